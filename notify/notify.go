// Package notify provides the notification services toasts are shown
// through: D-Bus on Linux, WinRT (via PowerShell) on Windows and beeep
// elsewhere, plus an in-memory Recorder.
package notify

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/jongio/azd-toast/logutil"
	"github.com/jongio/azd-toast/toast"
)

var log = logutil.NewLogger("notify")

// Service is a toast.Service backed by an OS notification system.
type Service interface {
	toast.Service

	// IsAvailable returns true if OS notifications are available and permitted.
	IsAvailable() bool

	// Close cleans up notification system resources.
	Close() error
}

// Backend names a Service implementation.
type Backend string

const (
	BackendAuto       Backend = "auto"
	BackendDBus       Backend = "dbus"
	BackendPowerShell Backend = "powershell"
	BackendBeeep      Backend = "beeep"
	BackendMemory     Backend = "memory"
)

// Backends returns the selectable backend names.
func Backends() []Backend {
	return []Backend{BackendAuto, BackendDBus, BackendPowerShell, BackendBeeep, BackendMemory}
}

// ParseBackend resolves a backend name. Empty means auto.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	if b == "" {
		return BackendAuto, nil
	}
	for _, known := range Backends() {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Config contains notification service configuration.
type Config struct {
	// AppName is the application name shown in notifications
	AppName string

	Backend Backend

	// Timeout for notification operations
	Timeout time.Duration
}

// DefaultConfig returns default notification configuration.
func DefaultConfig() Config {
	return Config{
		AppName: "azd-toast",
		Backend: BackendAuto,
		Timeout: 5 * time.Second,
	}
}

// New creates the service selected by config.Backend.
func New(config Config) (Service, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.AppName == "" {
		config.AppName = DefaultConfig().AppName
	}

	if config.Backend == "" || config.Backend == BackendAuto || config.Backend == platformBackend {
		return newPlatformService(config)
	}

	switch config.Backend {
	case BackendBeeep:
		return newBeeepService(config), nil
	case BackendMemory:
		return NewRecorder(), nil
	case BackendDBus, BackendPowerShell:
		return nil, fmt.Errorf("%w: backend %s is not supported on %s", ErrNotAvailable, config.Backend, runtime.GOOS)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, config.Backend)
	}
}

// Error types
var (
	ErrNotAvailable       = errors.New("OS notifications not available")
	ErrNotificationFailed = errors.New("failed to send notification")
	ErrUnknownBackend     = errors.New("unknown notification backend")
	ErrUnknownHandle      = errors.New("unknown notification handle")
	ErrRateLimited        = errors.New("notification rate limit exceeded")
	ErrCircuitOpen        = errors.New("notification service unavailable (circuit open)")
)
