package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo}, // Default for unknown
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"  error  ", LevelError},
	}

	for _, test := range tests {
		if result := ParseLevel(test.name); result != test.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", test.name, result, test.expected)
		}
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	if defaultLogger == nil {
		t.Fatal("Expected defaultLogger to be set after Init")
	}

	Info("test-subsystem", "test message %d", 42)

	output := buf.String()
	if !strings.Contains(output, "test message 42") {
		t.Error("Expected formatted log message to appear in output")
	}
	if !strings.Contains(output, "test-subsystem") {
		t.Error("Expected subsystem to appear in output")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)

	Debug("sub", "debug message")
	Info("sub", "info message")
	Warn("sub", "warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Error("Expected messages below the configured level to be suppressed")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Expected warn message to appear")
	}
}

func TestErrorIncludesErrAttr(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelError, &buf)

	Error("sub", errors.New("boom"), "operation failed")

	output := buf.String()
	if !strings.Contains(output, "operation failed") || !strings.Contains(output, "boom") {
		t.Errorf("Expected message and error in output, got: %s", output)
	}
}

func TestInitWithFile(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "oktamcp.log")

	if err := InitWithFile(LevelInfo, &buf, logFile); err != nil {
		t.Fatalf("InitWithFile failed: %v", err)
	}

	Info("sub", "dual output message")

	if !strings.Contains(buf.String(), "dual output message") {
		t.Error("Expected the message on the writer")
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "dual output message") {
		t.Error("Expected the message in the log file")
	}

	info, err := os.Stat(logFile)
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected owner-only permissions, got %v", info.Mode().Perm())
	}
}
