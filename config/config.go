// Package config loads and saves the azd-toast configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/jongio/azd-toast/notify"
)

// Environment overrides.
const (
	EnvAppID   = "TOAST_APP_ID"
	EnvBackend = "TOAST_BACKEND"
)

const (
	dirName  = "azd-toast"
	fileName = "config.yaml"

	maxAppIDLength = 128
)

// ErrInvalidConfig is returned by Validate and Load for unusable values.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the on-disk configuration.
type Config struct {
	// AppID identifies toasts shown by the CLI. Empty means a random id per run.
	AppID          string        `yaml:"appId,omitempty" json:"appId,omitempty"`
	Backend        string        `yaml:"backend,omitempty" json:"backend,omitempty"`
	Debug          bool          `yaml:"debug,omitempty" json:"debug,omitempty"`
	StructuredLogs bool          `yaml:"structuredLogs,omitempty" json:"structuredLogs,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	RateLimit      RateLimit     `yaml:"rateLimit" json:"rateLimit"`
	Breaker        Breaker       `yaml:"breaker" json:"breaker"`
	Defaults       Defaults      `yaml:"defaults" json:"defaults"`
}

// RateLimit bounds how often toasts are submitted.
type RateLimit struct {
	PerSecond float64 `yaml:"perSecond" json:"perSecond"`
	Burst     int     `yaml:"burst" json:"burst"`
}

// Breaker configures the circuit breaker around the notification service.
type Breaker struct {
	Failures int           `yaml:"failures" json:"failures"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// Defaults apply to toasts shown by the CLI when the flag is not given.
type Defaults struct {
	Audio      string        `yaml:"audio,omitempty" json:"audio,omitempty"`
	Silent     bool          `yaml:"silent,omitempty" json:"silent,omitempty"`
	Expiration time.Duration `yaml:"expiration,omitempty" json:"expiration,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	nc := notify.DefaultConfig()
	gc := notify.DefaultGuardConfig(string(nc.Backend))
	return Config{
		Backend: string(nc.Backend),
		Timeout: nc.Timeout,
		RateLimit: RateLimit{
			PerSecond: gc.RatePerSecond,
			Burst:     gc.Burst,
		},
		Breaker: Breaker{
			Failures: gc.BreakerFailures,
			Timeout:  gc.BreakerTimeout,
		},
	}
}

// Path returns the default configuration file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads path, falling back to Default when the file does not exist.
// Environment overrides are applied after reading.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads path without environment overrides or validation, so the
// result can be edited and saved back.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	// #nosec G304 -- path is chosen by the user or Path
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAppID)); v != "" {
		c.AppID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		c.Backend = v
	}
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if _, err := notify.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := ValidateAppID(c.AppID, true); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if c.Breaker.Failures < 0 || c.Breaker.Timeout < 0 {
		return fmt.Errorf("%w: breaker settings must not be negative", ErrInvalidConfig)
	}
	if c.Defaults.Expiration < 0 {
		return fmt.Errorf("%w: default expiration must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ValidateAppID checks an application id. It must be printable, contain no
// whitespace and stay within the platform length limit.
func ValidateAppID(id string, allowEmpty bool) error {
	if id == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: app id cannot be empty", ErrInvalidConfig)
	}
	if len(id) > maxAppIDLength {
		return fmt.Errorf("%w: app id exceeds %d characters", ErrInvalidConfig, maxAppIDLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: app id %q contains whitespace or control characters", ErrInvalidConfig, id)
		}
	}
	return nil
}

// NotifyConfig converts to the notify service configuration.
func (c Config) NotifyConfig() (notify.Config, error) {
	backend, err := notify.ParseBackend(c.Backend)
	if err != nil {
		return notify.Config{}, err
	}
	nc := notify.DefaultConfig()
	nc.Backend = backend
	if c.Timeout > 0 {
		nc.Timeout = c.Timeout
	}
	return nc, nil
}

// GuardConfig converts to the notify guard configuration.
func (c Config) GuardConfig(backend string) notify.GuardConfig {
	return notify.GuardConfig{
		Backend:         backend,
		RatePerSecond:   c.RateLimit.PerSecond,
		Burst:           c.RateLimit.Burst,
		BreakerFailures: c.Breaker.Failures,
		BreakerTimeout:  c.Breaker.Timeout,
	}
}

// Save writes c to path atomically, creating the directory if needed.
func Save(path string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return atomicWriteFile(path, data, 0o600)
}

// atomicWriteFile writes to a temporary file in the same directory and
// renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	var renameErr error
	for attempt := 0; attempt < 5; attempt++ {
		if renameErr = os.Rename(tmpPath, path); renameErr == nil {
			return nil
		}
		if attempt < 4 {
			time.Sleep(time.Duration(20*(attempt+1)) * time.Millisecond)
		}
	}
	_ = os.Remove(tmpPath)
	return fmt.Errorf("failed to rename temp file: %w", renameErr)
}
