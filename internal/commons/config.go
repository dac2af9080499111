package commons

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort         uint16
	SheetURL           string
	SheetFormat        string
	RefreshInterval    time.Duration
	FetchTimeout       time.Duration
	BoardTTL           time.Duration
	Location           *time.Location
	LookupTablesFile   string
	RefresherEnabled   bool
	RedisAddr          string
	RedisPass          string
	PostgresConn       string
	CORSAllowedOrigins []string
	RefreshRPS         float64
}

const (
	decimalBase = 10
	bitSize     = 16
)

func (c Config) UsesRedis() bool {
	return c.RedisAddr != ""
}

func (c Config) UsesPostgres() bool {
	return c.PostgresConn != ""
}

// LoadConfig reads the environment. requirePort is false for binaries that
// do not serve HTTP.
func LoadConfig(requirePort bool) (Config, error) {
	var config Config
	var errors []string

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		if requirePort {
			errors = append(errors, "SERVER_PORT is not set")
		}
	} else {
		parsedServerPort, err := strconv.ParseUint(serverPort, decimalBase, bitSize)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid SERVER_PORT: %s", err))
		} else {
			config.ServerPort = uint16(parsedServerPort)
		}
	}

	config.SheetURL = envOr("SHEET_URL", DefaultSheetURL)
	if u, err := url.Parse(config.SheetURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid SHEET_URL: %q", config.SheetURL))
	}

	config.SheetFormat = strings.ToLower(envOr("SHEET_FORMAT", "csv"))
	if config.SheetFormat != "csv" && config.SheetFormat != "xlsx" {
		errors = append(errors, fmt.Sprintf("invalid SHEET_FORMAT: %q, must be csv or xlsx", config.SheetFormat))
	}

	config.RefreshInterval = parseDuration("REFRESH_INTERVAL", DefaultRefreshInterval, &errors)
	config.FetchTimeout = parseDuration("FETCH_TIMEOUT", config.RefreshInterval, &errors)
	config.BoardTTL = parseDuration("BOARD_TTL", BoardTTLFactor*config.RefreshInterval, &errors)

	tz := envOr("BOARD_TIMEZONE", "Local")
	location, err := time.LoadLocation(tz)
	if err != nil {
		errors = append(errors, fmt.Sprintf("invalid BOARD_TIMEZONE: %s", err))
	}
	config.Location = location

	config.LookupTablesFile = os.Getenv("LOOKUP_TABLES_FILE")

	config.RefresherEnabled = true
	if raw := os.Getenv("REFRESHER_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid REFRESHER_ENABLED: %s", err))
		}
		config.RefresherEnabled = enabled
	}

	config.RedisAddr = os.Getenv("REDIS_ADDR")
	config.RedisPass = os.Getenv("REDIS_PASSWORD")
	if config.RedisAddr == "" && config.RedisPass != "" {
		errors = append(errors, "REDIS_PASSWORD is set but REDIS_ADDR is not")
	}

	config.PostgresConn = loadPostgresConn(&errors)

	config.CORSAllowedOrigins = splitList(envOr("CORS_ALLOWED_ORIGINS", "*"))

	config.RefreshRPS = DefaultRefreshRPS
	if raw := os.Getenv("REFRESH_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps <= 0 {
			errors = append(errors, fmt.Sprintf("invalid REFRESH_RPS: %q", raw))
		} else {
			config.RefreshRPS = rps
		}
	}

	if len(errors) > 0 {
		for _, err := range errors {
			fmt.Println("Configuration Error:", err)
		}
		return Config{}, fmt.Errorf("configuration errors occurred")
	}

	return config, nil
}

// loadPostgresConn builds the log sink DSN. The POSTGRES_* variables are
// all-or-nothing.
func loadPostgresConn(errors *[]string) string {
	keys := []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_NAME"}
	values := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		values[key] = os.Getenv(key)
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == len(keys) {
		return ""
	}
	for _, key := range missing {
		*errors = append(*errors, fmt.Sprintf("%s is not set", key))
	}
	if len(missing) > 0 {
		return ""
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		values["POSTGRES_USER"], values["POSTGRES_PASSWORD"], values["POSTGRES_HOST"], values["POSTGRES_PORT"], values["POSTGRES_NAME"])
}

func parseDuration(key string, fallback time.Duration, errors *[]string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid %s: %q", key, raw))
		return fallback
	}
	return d
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
