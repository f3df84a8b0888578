package provisionfs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a new logger instance with a specified level and output.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "provisionfs").
		Logger()
}

// NewTestLogger maps a -v count to a level: warn, info, debug, then trace.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	levels := []zerolog.Level{zerolog.WarnLevel, zerolog.InfoLevel, zerolog.DebugLevel}
	if verbose < 0 {
		verbose = 0
	}
	if verbose >= len(levels) {
		return NewLogger(w, zerolog.TraceLevel)
	}
	return NewLogger(w, levels[verbose])
}

// LogLevelFromString parses a string to a zerolog.Level.
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
}

// DefaultLogger returns a logger with default settings (warn level, stderr output).
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
