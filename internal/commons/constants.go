package commons

import "time"

const (
	DefaultSheetURL        = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSKvKZv-zizzPB8BMhqPQme5WwzhhYgScgZLv3bmU5RMjoYsoCy8Z3VFBowb8AgtEVSxOdB6yQ05QpR/pub?gid=0&single=true&output=csv"
	DefaultRefreshInterval = 300000 * time.Millisecond
	BoardCacheKey          = "tasas:board"
	BoardTTLFactor         = 3
	DefaultRefreshRPS      = 1
	RefreshBurst           = 1
	ServerIdleTimeout      = time.Minute
	ServerReadTimeout      = 10 * time.Second
	ServerWriteTimeout     = 30 * time.Second
	ServerShutdownTimeout  = 10 * time.Second
	LoggerShutdownTimeout  = 5 * time.Second
)
