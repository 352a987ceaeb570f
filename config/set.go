package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// setters maps dotted keys, as they appear in the YAML file, to parsers.
var setters = map[string]func(c *Config, v string) error{
	"appId":   func(c *Config, v string) error { c.AppID = v; return nil },
	"backend": func(c *Config, v string) error { c.Backend = strings.ToLower(v); return nil },
	"debug":   func(c *Config, v string) error { return parseBool(v, &c.Debug) },
	"structuredLogs": func(c *Config, v string) error {
		return parseBool(v, &c.StructuredLogs)
	},
	"timeout": func(c *Config, v string) error { return parseDuration(v, &c.Timeout) },
	"rateLimit.perSecond": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.RateLimit.PerSecond = f
		return nil
	},
	"rateLimit.burst":     func(c *Config, v string) error { return parseInt(v, &c.RateLimit.Burst) },
	"breaker.failures":    func(c *Config, v string) error { return parseInt(v, &c.Breaker.Failures) },
	"breaker.timeout":     func(c *Config, v string) error { return parseDuration(v, &c.Breaker.Timeout) },
	"defaults.audio":      func(c *Config, v string) error { c.Defaults.Audio = v; return nil },
	"defaults.silent":     func(c *Config, v string) error { return parseBool(v, &c.Defaults.Silent) },
	"defaults.expiration": func(c *Config, v string) error { return parseDuration(v, &c.Defaults.Expiration) },
}

// Keys lists the keys accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value into the field named by key and validates the result.
// c is left unchanged on error.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q (known: %s)", ErrInvalidConfig, key, strings.Join(Keys(), ", "))
	}
	next := *c
	if err := set(&next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
