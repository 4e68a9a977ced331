// Package logging provides the structured, one-line-per-record logger used
// across every component, so every emitted record carries a correlation id
// and a metadata object.
package logging

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// Logger emits structured log lines: ts, level, correlation id, message,
// and a metadata object.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
	debug *log.Logger
}

// Fields is the metadata object attached to a log record.
type Fields map[string]interface{}

// New creates a Logger writing info/warn/debug to stdout and error to stderr.
func New() *Logger {
	flags := log.LstdFlags
	return &Logger{
		info:  log.New(os.Stdout, "", flags),
		warn:  log.New(os.Stdout, "", flags),
		error: log.New(os.Stderr, "", flags),
		debug: log.New(os.Stdout, "", flags),
	}
}

// Info logs an informational record.
func (l *Logger) Info(correlationID, message string, fields Fields) {
	l.info.Print(format("INFO", correlationID, message, fields))
}

// Warn logs a warning record.
func (l *Logger) Warn(correlationID, message string, fields Fields) {
	l.warn.Print(format("WARN", correlationID, message, fields))
}

// Error logs an error record.
func (l *Logger) Error(correlationID, message string, fields Fields) {
	l.error.Print(format("ERROR", correlationID, message, fields))
}

// Debug logs a debug record.
func (l *Logger) Debug(correlationID, message string, fields Fields) {
	l.debug.Print(format("DEBUG", correlationID, message, fields))
}

func format(level, correlationID, message string, fields Fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ts=%s level=%s corr=%s msg=%q", time.Now().UTC().Format(time.RFC3339), level, correlationID, message)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}

	return b.String()
}
