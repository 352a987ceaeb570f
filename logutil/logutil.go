// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvDebug enables debug logging when set to "true" or "1".
const EnvDebug = "TOAST_DEBUG"

var (
	mu           sync.RWMutex
	globalLogger *slog.Logger
	level        = new(slog.LevelVar)
	structured   bool
	outputWriter io.Writer = os.Stderr
)

func init() {
	SetupLogger(false, false)
}

// SetupLogger configures the global logger to write to stderr.
//
// Parameters:
//   - debug: When true, enables debug-level logging
//   - json: When true, outputs JSON-formatted logs; otherwise uses text format
//
// This function is safe for concurrent use.
func SetupLogger(debug, json bool) {
	SetupLoggerWithWriter(os.Stderr, debug, json)
}

// SetupLoggerWithWriter configures the global logger with a custom writer.
// This is useful for testing or redirecting logs.
func SetupLoggerWithWriter(w io.Writer, debug, json bool) {
	mu.Lock()
	defer mu.Unlock()

	outputWriter = w
	structured = json
	if debug || envDebug() {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	rebuild()
}

// rebuild recreates the handler. Caller must hold mu.
func rebuild() {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if structured {
		handler = slog.NewJSONHandler(outputWriter, opts)
	} else {
		handler = slog.NewTextHandler(outputWriter, opts)
	}
	globalLogger = slog.New(handler)
}

func envDebug() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvDebug)))
	return v == "true" || v == "1"
}

// SetLevel changes the minimum level without replacing the handler.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel parses "debug", "info", "warn"/"warning" or "error".
// Unrecognized values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsDebugEnabled reports whether debug records are emitted.
func IsDebugEnabled() bool {
	return level.Level() <= slog.LevelDebug
}

// Logger returns the underlying slog.Logger for advanced usage.
// This function is safe for concurrent use.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Debug logs a debug message with optional key-value pairs.
//
// Example:
//
//	logutil.Debug("template selected", "template", "ToastText02")
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
//
// Example:
//
//	logutil.Error("toast submission failed", "error", err, "appId", appID)
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
