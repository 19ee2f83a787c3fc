package filepipe

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the console logger the engine and CLI share: plain
// text, RFC3339 timestamps, tagged with the library name.
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
		Str("lib", "filepipe").
		Logger()
}

// NewTestLogger returns a debug-level logger writing to w, for wiring
// into pipelines under test.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return NewLogger(w, zerolog.DebugLevel)
}

// LogLevelFromString parses the levels the --log-level flag accepts.
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown level %q (accepted: trace, debug, info, warn, error)", levelStr)
	}
}

// DefaultLogger logs warnings and errors to stderr.
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
