package cli

import (
	"strings"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/config"
)

// setupLogging initializes the global logger from the settings.
func setupLogging(cfg *config.Config) {
	format := logger.OutputFormat(strings.ToLower(cfg.Settings.LogFormat))
	logger.InitLogger(cfg.Settings.LogLevel, format)
}
