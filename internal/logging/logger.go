// Package logging provides structured leveled logging with JSON or text
// output and context propagation.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelFatal LogLevel = "fatal"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

var levelOrder = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// Logger emits structured log entries at or above its configured level.
type Logger struct {
	level  LogLevel
	format LogFormat
	output io.Writer
	fields map[string]interface{}
}

type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// NewLogger creates a new logger instance writing to stdout.
func NewLogger(level LogLevel, format LogFormat) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: os.Stdout,
		fields: make(map[string]interface{}),
	}
}

// WithField returns a child logger carrying one additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a child logger carrying additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	child := &Logger{
		level:  l.level,
		format: l.format,
		output: l.output,
		fields: make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// WithError returns a child logger carrying the error as a field.
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err.Error())
}

func (l *Logger) Debug(message string) { l.log(LevelDebug, message) }
func (l *Logger) Info(message string)  { l.log(LevelInfo, message) }
func (l *Logger) Warn(message string)  { l.log(LevelWarn, message) }
func (l *Logger) Error(message string) { l.log(LevelError, message) }

// Fatal logs at fatal level and exits the process.
func (l *Logger) Fatal(message string) {
	l.log(LevelFatal, message)
	os.Exit(1)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

func (l *Logger) log(level LogLevel, message string) {
	if levelOrder[level] < levelOrder[l.level] {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    l.fields,
	}

	if level == LevelError || level == LevelFatal {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	var output string
	if l.format == FormatJSON {
		jsonBytes, _ := json.Marshal(entry)
		output = string(jsonBytes)
	} else {
		output = fmt.Sprintf("[%s] %s: %s", entry.Timestamp, entry.Level, entry.Message)
		if len(entry.Fields) > 0 {
			fieldsJSON, _ := json.Marshal(entry.Fields)
			output += " fields=" + string(fieldsJSON)
		}
		if entry.Caller != "" {
			output += " caller=" + entry.Caller
		}
	}

	fmt.Fprintln(l.output, output)
}

// SetOutput redirects the logger output, used in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Global logger instance

var globalLogger *Logger

// InitGlobalLogger initializes the process-wide logger.
func InitGlobalLogger(level LogLevel, format LogFormat) {
	globalLogger = NewLogger(level, format)
}

// GetGlobalLogger returns the process-wide logger, creating a default one
// when InitGlobalLogger has not run.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewLogger(LevelInfo, FormatJSON)
	}
	return globalLogger
}

type loggerKey struct{}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves a logger from the context, falling back to the
// global logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return GetGlobalLogger()
}

// ParseLogLevel parses a string into a LogLevel, defaulting to info.
func ParseLogLevel(level string) LogLevel {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// ParseLogFormat parses a string into a LogFormat, defaulting to json.
func ParseLogFormat(format string) LogFormat {
	if format == "text" {
		return FormatText
	}
	return FormatJSON
}
