// Package config provides configuration management for the apod client.
// It handles loading, validating and saving the YAML settings file and
// applies defaults for every value the file leaves out.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/definition"
	"github.com/glorpus-work/apod/pkg/download"
	"github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings    `yaml:"settings"`
	Hooks    HooksConfig `yaml:"hooks,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// Cache settings
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Remote endpoint
	APIBaseURL string `yaml:"api_base_url"`
	APIKey     string `yaml:"api_key,omitempty"`

	// Network settings
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	UserAgent     string        `yaml:"user_agent,omitempty"`

	// Output settings
	LogLevel    string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat   string `yaml:"log_format"` // text, json
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// HooksConfig points at the Tengo scripts run by the pipeline. Dir is scanned
// for <hook-type>.tengo files; explicit paths take precedence.
type HooksConfig struct {
	Dir          string `yaml:"dir,omitempty"`
	PostDownload string `yaml:"post_download,omitempty"`
	Unsupported  string `yaml:"unsupported,omitempty"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxConcurrent is the default maximum number of concurrent prefetches.
	DefaultMaxConcurrent = 4

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2

	// FileName is the name of the configuration file inside the config directory.
	FileName = "config.yaml"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}

	return &Config{
		Settings: Settings{
			CacheDir:      cacheDir,
			APIBaseURL:    definition.DefaultBaseURL,
			HTTPTimeout:   DefaultHTTPTimeout,
			MaxConcurrent: DefaultMaxConcurrent,
			UserAgent:     download.DefaultUserAgent,
			LogLevel:      "info",
			LogFormat:     string(logger.FormatText),
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	absPath, err := absConfigPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(absPath)
	switch {
	case os.IsNotExist(err):
		return DefaultConfig(), nil
	case err != nil:
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader decodes, completes and validates a configuration.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(reader).Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	return &cfg, nil
}

// SaveConfig writes the configuration to path. The file is written next to
// its destination and renamed into place, so readers never see half a file.
func (c *Config) SaveConfig(path string) error {
	absPath, err := absConfigPath(path)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tmp, err := fsutil.CreateTempSibling(absPath)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}
	tmpPath := tmp.Name()

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(YAMLIndent)
	err = enc.Encode(c)
	if err == nil {
		err = enc.Close()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	if err := fsutil.Move(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

func absConfigPath(path string) (string, error) {
	if path == "" {
		return "", errors.ErrEmptyConfigPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}
	return absPath, nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	s := c.Settings
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.MaxConcurrent < 1 {
		return errors.ErrMaxConcurrentInvalid
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	switch logger.OutputFormat(strings.ToLower(s.LogFormat)) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return errors.ErrInvalidLogFormatWithDetails(s.LogFormat)
	}
	u, err := url.Parse(s.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Wrapf(errors.ErrInvalidBaseURL, "%q", s.APIBaseURL)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, FileName), nil
}

// GetCacheDir returns the artifact cache directory from settings.
func (c *Config) GetCacheDir() string {
	return c.Settings.CacheDir
}

// APIKey returns the key sent to the remote endpoint. NASA_API_KEY overrides
// the configured value; with neither set the demo key is used.
func (c *Config) APIKey() string {
	return definition.ResolveAPIKey(c.Settings.APIKey)
}

// Endpoint returns the remote endpoint described by the settings.
func (c *Config) Endpoint() definition.Endpoint {
	return definition.NewEndpoint(c.Settings.APIBaseURL, c.APIKey())
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.APIBaseURL == "" {
		c.Settings.APIBaseURL = defaults.Settings.APIBaseURL
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
