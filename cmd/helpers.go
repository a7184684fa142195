package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/ziadkadry99/zen-figurl/internal/buildrequest"
	"github.com/ziadkadry99/zen-figurl/internal/config"
	"github.com/ziadkadry99/zen-figurl/internal/metrics"
	"github.com/ziadkadry99/zen-figurl/internal/probe"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// setupLogging sends structured logs to stderr; stdout is reserved for
// command output and the MCP protocol.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `zenfigurl init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newResolver(cfg *config.Config) (siteuri.Resolver, error) {
	return siteuri.New(siteuri.Variant(cfg.Resolver), cfg.Hosting.BaseURL)
}

func newProber(cfg *config.Config, rec metrics.Recorder) *probe.Prober {
	return probe.NewProber(&http.Client{Timeout: cfg.Probe.Timeout}).WithRecorder(rec)
}

func newBuildClient(cfg *config.Config) *buildrequest.Client {
	return buildrequest.NewClient(cfg.TriggerURL(), &http.Client{Timeout: cfg.Build.Timeout})
}
