package config

import (
	"os"

	"rainbow/internal/logging"
)

const (
	DefaultDBPath   = "./rainbow.db"
	DefaultHTTPAddr = "127.0.0.1:8080"

	// DefaultMaxBatch bounds the number of digests accepted in one resolution request.
	DefaultMaxBatch  = 10_000
	DefaultCacheSize = 100_000
	DefaultMaxConns  = 8
)

// DBPath returns $DB_PATH or the default database file.
func DBPath() string {
	return getEnv("DB_PATH", DefaultDBPath)
}

// HTTPAddr returns $RAINBOW_ADDR or the default listen address.
func HTTPAddr() string {
	return getEnv("RAINBOW_ADDR", DefaultHTTPAddr)
}

// LogLevel returns the level named by $RAINBOW_LOG, falling back to info when it is unset or
// not a level name.
func LogLevel() string {
	level := getEnv("RAINBOW_LOG", "info")
	if _, err := logging.ParseLevel(level); err != nil {
		return "info"
	}
	return level
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
