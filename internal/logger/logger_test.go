package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, FormatJSON, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false, // won't log (below INFO)
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := buf.Len()

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > before
			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, FormatJSON, &buf)
	logger.now = fixedClock

	logger.Error("check failed", Fields{"attempt": 3}, errors.New("timeout"))

	var decoded LogEntry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v, output %q", err, buf.String())
	}

	if decoded.Timestamp != "2026-01-02T03:04:05Z" {
		t.Errorf("Timestamp = %v, want 2026-01-02T03:04:05Z", decoded.Timestamp)
	}
	if decoded.Level != "ERROR" {
		t.Errorf("Level = %v, want ERROR", decoded.Level)
	}
	if decoded.Error != "timeout" {
		t.Errorf("Error = %v, want timeout", decoded.Error)
	}
	if decoded.Fields["attempt"] != float64(3) {
		t.Errorf("Fields[attempt] = %v, want 3", decoded.Fields["attempt"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    string
	}{
		{
			name:    "no fields",
			level:   LevelInfo,
			message: "Monitor started",
			want:    "2026-01-02 03:04:05 INFO  Monitor started",
		},
		{
			name:    "sorted fields",
			level:   LevelWarn,
			message: "Delivery failed",
			fields:  Fields{"channel": "broadcast", "attempt": 2},
			want:    "2026-01-02 03:04:05 WARN  Delivery failed attempt=2 channel=broadcast",
		},
		{
			name:    "quoted values and error",
			level:   LevelError,
			message: "Check failed",
			fields:  Fields{"url": "a b"},
			err:     errors.New("boom"),
			want:    `2026-01-02 03:04:05 ERROR Check failed url="a b" error="boom"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelDebug, FormatText, &buf)
			logger.now = fixedClock

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			got := strings.TrimRight(buf.String(), "\n")
			if got != tt.want {
				t.Errorf("text line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"info", LevelInfo, false},
		{" DEBUG ", LevelDebug, false},
		{"Warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if got, err := ParseFormat("JSON"); err != nil || got != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v, %v; want json, nil", got, err)
	}
	if got, err := ParseFormat("text"); err != nil || got != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v; want text, nil", got, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) expected error, got nil")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	original := defaultLogger
	SetDefault(New(LevelDebug, FormatText, &buf))
	defer SetDefault(original)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.minLevel, FormatText, &buf)

			logger.log(tt.logLevel, "test", nil, nil)

			logged := buf.Len() > 0
			if logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}
