package config

import "time"

// Config is the top-level zenfigurl configuration, corresponding to .zenfigurl.yml.
type Config struct {
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Hosting  HostingConfig  `yaml:"hosting" koanf:"hosting"`
	Resolver string         `yaml:"resolver" koanf:"resolver"`
	Probe    ProbeConfig    `yaml:"probe" koanf:"probe"`
	Build    BuildConfig    `yaml:"build" koanf:"build"`
	Dispatch DispatchConfig `yaml:"dispatch" koanf:"dispatch"`
	Visits   VisitsConfig   `yaml:"visits" koanf:"visits"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	DataDir         string `yaml:"data_dir" koanf:"data_dir"`
}

// HostingConfig describes where built sites are published.
type HostingConfig struct {
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// ProbeConfig controls site availability checks.
type ProbeConfig struct {
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// BuildConfig controls the build request issued from site pages.
type BuildConfig struct {
	// TriggerURL is the build-trigger endpoint. Empty means this server's
	// own /api/requestBuildSite.
	TriggerURL string        `yaml:"trigger_url" koanf:"trigger_url"`
	Timeout    time.Duration `yaml:"timeout" koanf:"timeout"`
}

// DispatchConfig names the CI workflow started for build requests.
type DispatchConfig struct {
	Owner           string   `yaml:"owner" koanf:"owner"`
	Repo            string   `yaml:"repo" koanf:"repo"`
	Workflow        string   `yaml:"workflow" koanf:"workflow"`
	Branch          string   `yaml:"branch" koanf:"branch"`
	APIURL          string   `yaml:"api_url,omitempty" koanf:"api_url"`
	Token           string   `yaml:"token,omitempty" koanf:"token"`
	AllowedPatterns []string `yaml:"allowed_patterns,omitempty" koanf:"allowed_patterns"`
}

// VisitsConfig controls how long site page state is kept in memory.
type VisitsConfig struct {
	TTL           time.Duration `yaml:"ttl" koanf:"ttl"`
	PruneInterval time.Duration `yaml:"prune_interval" koanf:"prune_interval"`
}
