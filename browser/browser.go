// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package browser

import (
	"errors"
	"fmt"
	"io"
	neturl "net/url"
	"strings"

	pkgbrowser "github.com/pkg/browser"

	"github.com/jongio/azd-toast/logutil"
	"github.com/jongio/azd-toast/toast"
)

// MaxURLLength is the practical limit for URL length.
const MaxURLLength = 2048

// ErrInvalidURL is returned for launch arguments that are not http(s) URLs.
var ErrInvalidURL = errors.New("invalid launch URL")

var log = logutil.NewLogger("browser")

// openURL is replaced in tests.
var openURL = pkgbrowser.OpenURL

func init() {
	// keep xdg-open chatter out of CLI output
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
}

// Target represents the browser target for launching URLs.
type Target string

const (
	// TargetDefault uses the system default browser
	TargetDefault Target = "default"
	// TargetNone disables browser launching
	TargetNone Target = "none"
)

// ValidTargets returns all valid browser target values.
func ValidTargets() []Target {
	return []Target{TargetDefault, TargetNone}
}

// IsValid checks if a target string is valid.
func IsValid(target string) bool {
	t := Target(target)
	for _, valid := range ValidTargets() {
		if t == valid {
			return true
		}
	}
	return false
}

// Validate checks that rawURL is an absolute http or https URL with a host.
func Validate(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("%w: url cannot be empty", ErrInvalidURL)
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("%w: url exceeds maximum length of %d characters", ErrInvalidURL, MaxURLLength)
	}

	parsed, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		if parsed.Scheme == "" {
			return fmt.Errorf("%w: url must use http:// or https://", ErrInvalidURL)
		}
		return fmt.Errorf("%w: url must use http:// or https://, got: %s", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url missing host", ErrInvalidURL)
	}
	return nil
}

// Open opens rawURL in the browser selected by target.
func Open(rawURL string, target Target) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	if target == TargetNone {
		return nil
	}
	if err := openURL(strings.TrimSpace(rawURL)); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// OpenOnActivate returns an activation callback that opens the activation
// arguments when they are a URL.
func OpenOnActivate(target Target) func(*toast.Notification, toast.ActivatedEventArgs) {
	return func(n *toast.Notification, e toast.ActivatedEventArgs) {
		if Validate(e.Arguments) != nil {
			log.Debug("activation arguments are not a URL", "appId", n.AppID())
			return
		}
		if err := Open(e.Arguments, target); err != nil {
			log.Warn("could not open browser", "error", err)
		}
	}
}
