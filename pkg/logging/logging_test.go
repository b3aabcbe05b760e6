package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	ctrl "sigs.k8s.io/controller-runtime"
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
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
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
		t.Error("Expected defaultLogger to be set after Init")
	}

	Info("test-subsystem", "test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Error("Expected log message to appear in output")
	}

	if !strings.Contains(output, "test-subsystem") {
		t.Error("Expected subsystem to appear in output")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	// Initialize with INFO level
	Init(LevelInfo, &buf)

	// Debug should be filtered out
	Debug("test", "debug message")

	// Info should appear
	Info("test", "info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at INFO level")
	}

	if !strings.Contains(output, "info message") {
		t.Error("Info message should appear at INFO level")
	}
}

func TestErrorAttribute(t *testing.T) {
	var buf bytes.Buffer

	Init(LevelInfo, &buf)

	Error("test", errors.New("boom"), "operation failed for %s", "default/mail-gun")

	output := buf.String()
	if !strings.Contains(output, "boom") {
		t.Error("Expected wrapped error text to appear in output")
	}
	if !strings.Contains(output, "default/mail-gun") {
		t.Error("Expected formatted arguments to appear in output")
	}
}

func TestFallback(t *testing.T) {
	saved := defaultLogger
	defer func() { defaultLogger = saved }()

	// Before Init, Fallback must self-initialize rather than return nil.
	defaultLogger = nil
	logger := Fallback()
	if logger == nil {
		t.Fatal("Expected Fallback to return a logger before Init")
	}
	if defaultLogger == nil {
		t.Error("Expected Fallback to initialize the default logger")
	}

	// After Init, Fallback returns the configured logger.
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	logger = Fallback()
	if logger != defaultLogger {
		t.Error("Expected Fallback to return the initialized logger")
	}

	logger.Error("bootstrap failure", "error", "boom")
	if !strings.Contains(buf.String(), "bootstrap failure") {
		t.Error("Expected fallback log message to appear in output")
	}
}

func TestControllerRuntimeLoggerInitialization(t *testing.T) {
	var buf bytes.Buffer

	// Init should also wire the controller-runtime logger
	Init(LevelInfo, &buf)

	logger := ctrl.Log

	if logger.GetSink() == nil {
		t.Error("Expected controller-runtime logger sink to be initialized")
	}

	if !logger.Enabled() {
		t.Error("Expected controller-runtime logger to be enabled")
	}

	// Logging through controller-runtime must not panic and must use the
	// slog bridge.
	logger.Info("test message from controller-runtime logger", "key", "value")
}
