// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables honored by SetupFromEnv.
const (
	// EnvLogLevel selects the minimum level (debug, info, warn, error).
	EnvLogLevel = "FASTBREAK_LOG_LEVEL"

	// EnvLogFormat selects the output format ("console" or "json").
	EnvLogFormat = "FASTBREAK_LOG_FORMAT"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	log.Logger = logger

	return logger
}

// SetupFromEnv configures the global logger from FASTBREAK_LOG_LEVEL and
// FASTBREAK_LOG_FORMAT, falling back to the defaults when unset.
func SetupFromEnv() zerolog.Logger {
	cfg := DefaultConfig()
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Level = LogLevel(level)
	}
	if strings.EqualFold(os.Getenv(EnvLogFormat), "console") {
		cfg.Pretty = true
	}
	return Setup(cfg)
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Per-attempt request flow (endpoint, query, attempt number)
//   - Cooldown waits before dispatch
//   - Tabular passthrough decisions
//
// Info: Normal operation events
//   - Batch start, progress, and completion
//   - Recovery after a retried failure
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts and backoff waits
//   - Rate limit hits and recorded cooldowns
//   - Partial batch failures (before the aggregate is returned)
//
// Error: Error conditions requiring attention
//   - Failed requests after retry exhaustion
//   - Response decode failures (API contract drift)
//   - Configuration errors
//
// Context Fields:
//   - endpoint: stats API endpoint path
//   - status: HTTP status code
//   - duration: request or batch duration
//   - error_class: error classification (client, server, rate_limit, network, decode)
//   - attempt: 1-based attempt number
//   - cooldown: server-requested rate limit window
//   - completed/total: batch progress counters
