// Package logging builds the hclog loggers used by the stegobmp packages and
// command.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvJSONLog switches every logger to JSON output when set to "1".
	EnvJSONLog = "STEGOBMP_JSON_LOG"
	// EnvLogLevel sets the default level.
	EnvLogLevel = "STEGOBMP_LOG_LEVEL"

	defaultLevel = "warn"
	linePrefix   = "🖼️  "
)

// NewLogger returns a logger named name writing to output (stderr when nil).
// Text output is line-prefixed; timestamps are UTC. An unrecognised level
// falls back to warn.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"
	if !jsonFormat {
		output = NewPrefixWriter(linePrefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      ParseLevel(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn:     func() time.Time { return time.Now().UTC() },
	})
}

// ParseLevel maps a level name to an hclog.Level, defaulting to Warn.
func ParseLevel(level string) hclog.Level {
	if l := hclog.LevelFromString(level); l != hclog.NoLevel {
		return l
	}
	return hclog.Warn
}

// GetLogLevel returns the level named by STEGOBMP_LOG_LEVEL, or "warn".
func GetLogLevel() string {
	if level := os.Getenv(EnvLogLevel); level != "" {
		return level
	}
	return defaultLevel
}
