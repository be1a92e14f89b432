// Package logging builds the hclog loggers used across numeracrypt.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultLevel keeps routine runs quiet.
	DefaultLevel = "warn"

	linePrefix = "🔐 "
)

// NewLogger creates an hclog logger. level may carry a "json:" prefix
// ("json:debug") to switch to JSON output; NUMERACRYPT_JSON_LOG=1 does the
// same. Plain output gets a 🔐 prefix on every line.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	actualLevel, jsonFormat := ParseLevel(level)
	if os.Getenv("NUMERACRYPT_JSON_LOG") == "1" {
		jsonFormat = true
	}

	if !jsonFormat {
		output = NewPrefixWriter(linePrefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(actualLevel),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ParseLevel splits "json:<level>" into its level and the JSON flag.
// A bare "json" means JSON at info level; empty means DefaultLevel.
func ParseLevel(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return DefaultLevel, false
	}
	if !strings.HasPrefix(value, "json") {
		return value, false
	}

	parts := strings.SplitN(value, ":", 2)
	if len(parts) > 1 && parts[1] != "" {
		return parts[1], true
	}
	return "info", true
}

// ResolveLevel picks the CLI value, then NUMERACRYPT_LOG_LEVEL, then the default.
// The second return value names where the level came from.
func ResolveLevel(cliLevel string) (string, string) {
	if cliLevel != "" {
		return cliLevel, "CLI --log-level"
	}
	if envLevel := os.Getenv("NUMERACRYPT_LOG_LEVEL"); envLevel != "" {
		return envLevel, "NUMERACRYPT_LOG_LEVEL"
	}
	return DefaultLevel, "default"
}

// OpenOutput returns an append-mode writer for path, or stderr when path is
// empty or cannot be opened. The returned close function is always safe to call.
func OpenOutput(path string) (io.Writer, func() error) {
	if path == "" {
		return os.Stderr, func() error { return nil }
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr, func() error { return nil }
	}
	return file, file.Close
}
