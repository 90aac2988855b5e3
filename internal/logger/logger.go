// Package logger provides leveled console logging for the monitor.
//
// The logger supports multiple log levels (DEBUG, INFO, WARN, ERROR) and two output
// formats: human-readable timestamped lines (the default) and structured JSON for log
// shippers. Both formats carry arbitrary structured fields.
//
// Example usage:
//
//	logger.Info("Check completed", logger.Fields{
//	    "attempt":   12,
//	    "available": false,
//	})
//
//	logger.Error("Check failed", logger.Fields{
//	    "consecutive_errors": 3,
//	}, err)
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects how entries are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// textTimeLayout is used for human-readable lines
const textTimeLayout = "2006-01-02 15:04:05"

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger provides leveled logging
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	format   Format
	output   io.Writer
	now      func() time.Time
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, FormatText, os.Stdout)
}

// New creates a new logger with the specified minimum log level, format and output destination.
// Messages below the minimum level will be discarded.
func New(level Level, format Format, output io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		format:   format,
		output:   output,
		now:      time.Now,
	}
}

// SetDefault sets the default package-level logger used by the convenience functions
// (Debug, Info, Warn, Error). This allows centralizing logger configuration.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// ParseLevel converts a case-insensitive level name into a Level
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("invalid log level: %s (must be DEBUG, INFO, WARN or ERROR)", s)
	}
	return level, nil
}

// ParseFormat converts a case-insensitive format name into a Format
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// log writes a log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	now := l.now()
	entry := LogEntry{
		Level:   string(level),
		Message: message,
		Fields:  fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	var line string
	if l.format == FormatJSON {
		entry.Timestamp = now.UTC().Format(time.RFC3339)
		data, marshalErr := json.Marshal(entry)
		if marshalErr != nil {
			// Fallback to plain text if JSON marshal fails
			line = fmt.Sprintf("[%s] %s: %s (marshal error: %v)",
				entry.Timestamp, entry.Level, entry.Message, marshalErr)
		} else {
			line = string(data)
		}
	} else {
		entry.Timestamp = now.Format(textTimeLayout)
		line = formatText(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.output, line)
}

// formatText renders an entry as "timestamp LEVEL message key=value ... error=..."
func formatText(entry LogEntry) string {
	var b strings.Builder
	b.WriteString(entry.Timestamp)
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%-5s", entry.Level))
	b.WriteString(" ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%s", k, formatValue(entry.Fields[k])))
	}

	if entry.Error != "" {
		b.WriteString(fmt.Sprintf(" error=%q", entry.Error))
	}
	return b.String()
}

// formatValue quotes values that contain whitespace so lines stay splittable
func formatValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// shouldLog determines if a message should be logged based on level
func (l *Logger) shouldLog(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

// Debug logs a debug message with optional structured fields.
// Debug messages are typically used for detailed diagnostic information.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
// Info messages are used for general operational information.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
// Warning messages indicate potential issues that don't prevent operation.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
// Error messages indicate failures that prevent normal operation.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
