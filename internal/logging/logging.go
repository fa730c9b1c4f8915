// Package logging provides structured logging with optional file output.
// It is configured through environment variables.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps a logger and the writer it may need to close.
type Logger struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// NewWithWriter creates a logger writing to w, with the level and prefix
// taken from the environment.
func NewWithWriter(w io.Writer) *Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	switch os.Getenv("OPDUMP_LOG_LEVEL") {
	case "debug":
		lg.SetLevel(log.DebugLevel)
	case "warn":
		lg.SetLevel(log.WarnLevel)
	case "error":
		lg.SetLevel(log.ErrorLevel)
	default:
		lg.SetLevel(log.InfoLevel)
	}

	prefix := os.Getenv("OPDUMP_LOG_PREFIX")
	if prefix == "" {
		prefix = "opdump"
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok {
		closer = c
	}

	return &Logger{Logger: lg.WithPrefix(prefix), closer: closer}
}

// New creates a logger based on environment variables:
//
//	OPDUMP_LOG_LEVEL:   debug, info, warn, error (default: info)
//	OPDUMP_LOG_PREFIX:  prefix for log messages (default: "opdump")
//	OPDUMP_LOG_TO_FILE: when "1", log to a timestamped file instead of stderr
func New() *Logger {
	output := io.Writer(os.Stderr)

	if os.Getenv("OPDUMP_LOG_TO_FILE") == "1" {
		logFile := fmt.Sprintf("opdump-%s.log", time.Now().Format("20060102-150405"))
		if f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644); err == nil {
			output = f
		}
		// On failure, fall back to stderr.
	}

	return NewWithWriter(output)
}

// IsDebug returns true if debug logging is enabled.
func IsDebug() bool {
	return os.Getenv("OPDUMP_LOG_LEVEL") == "debug"
}
