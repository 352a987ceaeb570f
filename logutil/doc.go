// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides a structured logging abstraction built on top of slog.
//
// # Basic Usage
//
//	// Initialize logging (typically in main.go)
//	logutil.SetupLogger(debug, structured)
//
//	logutil.Debug("toast content", "xml", xml)
//	logutil.Error("toast submission failed", "error", err)
//
// # Component Loggers
//
// Packages that log repeatedly create a component logger once:
//
//	var log = logutil.NewLogger("notify")
//	log.WithNotification(appID).Info("shown", "handle", id)
//
// # Debug Mode
//
// Debug logging can be enabled in two ways:
//   - Pass debug=true to SetupLogger
//   - Set TOAST_DEBUG=true environment variable
package logutil
