package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: ZENFIGURL_SERVER__PORT -> server.port.
const EnvPrefix = "ZENFIGURL_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ZENFIGURL_*). A .env file next to the
// config file is loaded into the environment first, without overriding
// variables that are already set.
func Load(path string) (*Config, error) {
	dotenv := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("reading %s: %w", dotenv, err)
		}
	}

	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Dispatch.Token == "" {
		cfg.Dispatch.Token = strings.TrimSpace(os.Getenv(TokenEnvVar))
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path. The dispatch
// token is never written.
func (c *Config) Save(path string) error {
	cp := *c
	cp.Dispatch.Token = ""
	data, err := yamlv3.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.DataDir == "" {
		return fmt.Errorf("server.data_dir is required")
	}

	if err := validateHTTPURL("hosting.base_url", c.Hosting.BaseURL); err != nil {
		return err
	}
	if c.Build.TriggerURL != "" {
		if err := validateHTTPURL("build.trigger_url", c.Build.TriggerURL); err != nil {
			return err
		}
	}

	switch c.Resolver {
	case ResolverScheme, ResolverRecords:
	default:
		return fmt.Errorf("invalid resolver %q: must be one of scheme, records", c.Resolver)
	}

	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}
	if c.Build.Timeout <= 0 {
		return fmt.Errorf("build.timeout must be positive")
	}

	if c.Dispatch.Owner == "" || c.Dispatch.Repo == "" {
		return fmt.Errorf("dispatch.owner and dispatch.repo are required")
	}
	if c.Dispatch.Workflow == "" {
		return fmt.Errorf("dispatch.workflow is required")
	}
	if c.Dispatch.Branch == "" {
		return fmt.Errorf("dispatch.branch is required")
	}

	if c.Visits.TTL <= 0 || c.Visits.PruneInterval <= 0 {
		return fmt.Errorf("visits.ttl and visits.prune_interval must be positive")
	}

	return nil
}

// TriggerURL returns the build-trigger endpoint site pages call.
func (c *Config) TriggerURL() string {
	if c.Build.TriggerURL != "" {
		return c.Build.TriggerURL
	}
	return fmt.Sprintf("http://127.0.0.1:%d/api/requestBuildSite", c.Server.Port)
}

func validateHTTPURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: must be an http(s) URL", key, raw)
	}
	return nil
}
