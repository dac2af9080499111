package model

import (
	"time"

	"github.com/google/uuid"
)

type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelError LogLevel = "ERROR"
)

// Log is a persisted log line. Entries written while a refresh cycle runs
// carry the CycleID of the board that cycle published, so a stored board
// can be traced back to what happened while producing it.
type Log struct {
	ID        uuid.UUID     `json:"id"`
	CycleID   uuid.NullUUID `json:"cycle_id"`
	Level     LogLevel      `json:"level"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
}

