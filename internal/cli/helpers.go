package cli

import (
	"fmt"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/cache"
	"github.com/glorpus-work/apod/pkg/config"
	"github.com/glorpus-work/apod/pkg/download"
	"github.com/glorpus-work/apod/pkg/hooks"
	"github.com/glorpus-work/apod/pkg/metrics"
	"github.com/glorpus-work/apod/pkg/orchestrator"
)

// These variables will be set by the main package
var (
	ConfigPath  *string
	Verbose     *bool
	LogFormat   *string
	MetricsFile *string
)

// loadConfig loads the configuration, applies the global flag overrides and
// initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if LogFormat != nil && *LogFormat != "" {
		cfg.Settings.LogFormat = *LogFormat
	}
	if MetricsFile != nil && *MetricsFile != "" {
		cfg.Settings.MetricsFile = *MetricsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setupLogging(cfg)
	return cfg, nil
}

// pipeline bundles what the fetching commands need.
type pipeline struct {
	cfg          *config.Config
	store        *cache.Store
	metrics      *metrics.Metrics
	orchestrator *orchestrator.Orchestrator
}

// newPipeline wires the cache store, the HTTP fetcher, metrics and the hook
// scripts configured in cfg into an orchestrator.
func newPipeline(cfg *config.Config) (*pipeline, error) {
	store := cache.NewStore(cfg.GetCacheDir())
	if err := store.EnsureDirectory(); err != nil {
		return nil, err
	}

	m := metrics.New()
	fetcher := download.NewHTTPFetcher(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent, download.WithMetrics(m))

	orch := orchestrator.New(store, fetcher, cfg.Endpoint(), m)
	orch.Concurrency = cfg.Settings.MaxConcurrent
	orch.Hooks.OnEvent = logEvent

	scripts, err := loadScripts(cfg.Hooks)
	if err != nil {
		return nil, err
	}
	if scripts != nil {
		orch.Scripts = scripts
	}

	return &pipeline{cfg: cfg, store: store, metrics: m, orchestrator: orch}, nil
}

// flushMetrics writes the metrics textfile when one is configured.
func (p *pipeline) flushMetrics() {
	path := p.cfg.Settings.MetricsFile
	if path == "" {
		return
	}
	if err := p.metrics.WriteTextfile(path); err != nil {
		logger.Warn("Failed to write metrics file", logger.Fields{"path": path, "error": err})
		return
	}
	logger.Debug("Metrics written", logger.Fields{"path": path})
}

// loadScripts returns nil when no hook script is configured.
func loadScripts(hc config.HooksConfig) (*hooks.TengoExecutor, error) {
	if hc.Dir == "" && hc.PostDownload == "" && hc.Unsupported == "" {
		return nil, nil
	}

	executor := hooks.NewTengoExecutor()
	if hc.Dir != "" {
		if err := hooks.LoadDir(executor, hc.Dir); err != nil {
			return nil, err
		}
	}
	explicit := map[hooks.HookType]string{
		hooks.PostDownload: hc.PostDownload,
		hooks.Unsupported:  hc.Unsupported,
	}
	for hookType, path := range explicit {
		if path == "" {
			continue
		}
		if err := hooks.LoadFile(executor, hookType, path); err != nil {
			return nil, err
		}
	}
	return executor, nil
}

func logEvent(e orchestrator.Event) {
	fields := logger.Fields{"request_id": e.ID, "date": e.Date.String(), "phase": e.Phase.String()}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	logger.DebugfWithFields(fields, "Pipeline event: %s", e.Msg)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
