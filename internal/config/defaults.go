package config

import "time"

// Resolver variants accepted in the resolver key.
const (
	ResolverScheme  = "scheme"
	ResolverRecords = "records"
)

// TokenEnvVar is read when dispatch.token is not configured.
const TokenEnvVar = "GITHUB_API_TOKEN"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			DataDir: ".zenfigurl",
		},
		Hosting: HostingConfig{
			BaseURL: "https://neurosift.org/zen-figurl-sites",
		},
		Resolver: ResolverScheme,
		Probe: ProbeConfig{
			Timeout: 10 * time.Second,
		},
		Build: BuildConfig{
			Timeout: 30 * time.Second,
		},
		Dispatch: DispatchConfig{
			Owner:    "magland",
			Repo:     "zen-figurl",
			Workflow: "prepare-site.yml",
			Branch:   "main",
		},
		Visits: VisitsConfig{
			TTL:           30 * time.Minute,
			PruneInterval: time.Minute,
		},
	}
}
