package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/apod/pkg/definition"
	"github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultMaxConcurrent, cfg.Settings.MaxConcurrent)
	assert.Equal(t, definition.DefaultBaseURL, cfg.Settings.APIBaseURL)
	assert.Equal(t, filepath.Join("/tmp/xdg-cache", "apod"), cfg.Settings.CacheDir)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  cache_dir: /srv/apod
  api_key: abc123
  log_level: debug
  log_format: json
  http_timeout: 5s
  max_concurrent: 2
hooks:
  post_download: /etc/apod/notify.tengo`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/srv/apod", cfg.Settings.CacheDir)
	assert.Equal(t, "abc123", cfg.Settings.APIKey)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "json", cfg.Settings.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 2, cfg.Settings.MaxConcurrent)
	assert.Equal(t, "/etc/apod/notify.tengo", cfg.Hooks.PostDownload)
	// defaults filled in
	assert.Equal(t, definition.DefaultBaseURL, cfg.Settings.APIBaseURL)
	assert.NotEmpty(t, cfg.Settings.UserAgent)
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Settings, cfg.Settings)
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxConcurrent, cfg.Settings.MaxConcurrent)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)

	_, err = LoadConfigFromReader(strings.NewReader("settings: [not, a, map]"))
	assert.ErrorIs(t, err, errors.ErrConfigParse)

	_, err = LoadConfigFromReader(strings.NewReader("settings:\n  max_concurrent: -1\n"))
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.MetricsFile = "/var/lib/node_exporter/apod.prom"

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(configPath), ".dl-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Settings, loaded.Settings)

	assert.ErrorIs(t, cfg.SaveConfig(""), errors.ErrEmptyConfigPath)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Settings.HTTPTimeout = -time.Second },
			wantErr: errors.ErrHTTPTimeoutNegative,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Settings.MaxConcurrent = 0 },
			wantErr: errors.ErrMaxConcurrentInvalid,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Settings.LogLevel = "trace" },
			wantErr: errors.ErrInvalidLogLevel,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Settings.LogFormat = "xml" },
			wantErr: errors.ErrInvalidLogFormat,
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Settings.APIBaseURL = "/planetary/apod" },
			wantErr: errors.ErrInvalidBaseURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), errors.ErrConfigValidation)
}

func TestAPIKeyResolution(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv(definition.APIKeyEnv, "")
	assert.Equal(t, definition.DemoAPIKey, cfg.APIKey())

	cfg.Settings.APIKey = "configured"
	assert.Equal(t, "configured", cfg.APIKey())
	assert.Equal(t, "configured", cfg.Endpoint().APIKey)

	t.Setenv(definition.APIKeyEnv, "from-env")
	assert.Equal(t, "from-env", cfg.APIKey())
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-config", "apod", "config.yaml"), path)
}
