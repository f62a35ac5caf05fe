package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/glorpus-work/apod/pkg/errors"
)

// Keys lists the keys accepted by GetValue and SetValue.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accessor struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

func stringField(field func(c *Config) *string) accessor {
	return accessor{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, value string) error {
			*field(c) = value
			return nil
		},
	}
}

var accessors = map[string]accessor{
	"cache_dir":    stringField(func(c *Config) *string { return &c.Settings.CacheDir }),
	"api_base_url": stringField(func(c *Config) *string { return &c.Settings.APIBaseURL }),
	"api_key":      stringField(func(c *Config) *string { return &c.Settings.APIKey }),
	"user_agent":   stringField(func(c *Config) *string { return &c.Settings.UserAgent }),
	"log_level":    stringField(func(c *Config) *string { return &c.Settings.LogLevel }),
	"log_format":   stringField(func(c *Config) *string { return &c.Settings.LogFormat }),
	"metrics_file": stringField(func(c *Config) *string { return &c.Settings.MetricsFile }),

	"hooks.dir":           stringField(func(c *Config) *string { return &c.Hooks.Dir }),
	"hooks.post_download": stringField(func(c *Config) *string { return &c.Hooks.PostDownload }),
	"hooks.unsupported":   stringField(func(c *Config) *string { return &c.Hooks.Unsupported }),

	"http_timeout": {
		get: func(c *Config) string { return c.Settings.HTTPTimeout.String() },
		set: func(c *Config, value string) error {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value for http_timeout: %s", value)
			}
			c.Settings.HTTPTimeout = d
			return nil
		},
	},
	"max_concurrent": {
		get: func(c *Config) string { return strconv.Itoa(c.Settings.MaxConcurrent) },
		set: func(c *Config, value string) error {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid integer value for max_concurrent: %s", value)
			}
			c.Settings.MaxConcurrent = n
			return nil
		},
	},
}

// SetValue sets a configuration value by key. The resulting configuration is
// validated; on failure the previous value is restored.
func (c *Config) SetValue(key, value string) error {
	acc, ok := accessors[key]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	previous := acc.get(c)
	if err := acc.set(c, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		_ = acc.set(c, previous)
		return err
	}
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	acc, ok := accessors[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return acc.get(c), nil
}

// ToMap returns every key with its current value. The api_key is masked.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(accessors))
	for key, acc := range accessors {
		result[key] = acc.get(c)
	}
	if result["api_key"] != "" {
		result["api_key"] = "********"
	}
	return result
}
