// Package logger provides the structured logger used by the server and the
// command-line entry point.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes component-tagged structured log lines.
type Logger struct {
	logger zerolog.Logger
}

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.DurationFieldInteger = true

	return &Logger{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// NewConsole returns a human-readable logger on stderr. Stdout is reserved
// for the protocol stream.
func NewConsole(level zerolog.Level) *Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level. The empty string selects
// info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Info logs message for component with optional fields.
func (l *Logger) Info(component, message string, fields map[string]interface{}) {
	l.emit(l.logger.Info(), component, fields).Msg(message)
}

// Warning logs message for component with optional fields.
func (l *Logger) Warning(component, message string, fields map[string]interface{}) {
	l.emit(l.logger.Warn(), component, fields).Msg(message)
}

// Debug logs message for component with optional fields.
func (l *Logger) Debug(component, message string, fields map[string]interface{}) {
	l.emit(l.logger.Debug(), component, fields).Msg(message)
}

// Error logs err for component with optional fields.
func (l *Logger) Error(component string, err error, fields map[string]interface{}) {
	l.emit(l.logger.Error(), component, fields).Err(err).Msg("operation failed")
}

// emit tags event with component and fields. Disabled events are nil and
// every zerolog method on them is a no-op.
func (l *Logger) emit(event *zerolog.Event, component string, fields map[string]interface{}) *zerolog.Event {
	if event == nil {
		return nil
	}
	event = event.Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}
