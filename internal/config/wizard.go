package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// DefaultPath is the config file written by the wizard and read by default.
const DefaultPath = ".zenfigurl.yml"

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to zenfigurl! Let's configure this server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Resolver.
	resolverPrompt := promptui.Select{
		Label: "Select site URI resolver",
		Items: []string{
			"scheme  - sha1:// zenodo:// zenodo-sandbox://",
			"records - sha1:// zenodo record URLs, direct http(s)",
		},
	}
	idx, _, err := resolverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("resolver selection: %w", err)
	}
	cfg.Resolver = []string{ResolverScheme, ResolverRecords}[idx]

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("not a valid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 3. Hosting base URL.
	basePrompt := promptui.Prompt{
		Label:   "Hosting base URL",
		Default: cfg.Hosting.BaseURL,
		Validate: func(s string) error {
			return validateHTTPURL("hosting base URL", s)
		},
	}
	if cfg.Hosting.BaseURL, err = basePrompt.Run(); err != nil {
		return nil, fmt.Errorf("hosting base URL: %w", err)
	}

	// 4. Workflow repository.
	repoPrompt := promptui.Prompt{
		Label:   "Workflow repository (owner/repo)",
		Default: cfg.Dispatch.Owner + "/" + cfg.Dispatch.Repo,
		Validate: func(s string) error {
			if _, _, ok := splitRepo(s); !ok {
				return fmt.Errorf("expected owner/repo")
			}
			return nil
		},
	}
	repoStr, err := repoPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("workflow repository: %w", err)
	}
	cfg.Dispatch.Owner, cfg.Dispatch.Repo, _ = splitRepo(repoStr)

	// 5. Allowed site URI patterns.
	allowPrompt := promptui.Prompt{
		Label:   "Allowed site URI patterns (comma-separated globs, blank for any)",
		Default: "",
	}
	allowStr, err := allowPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("allowed patterns: %w", err)
	}
	cfg.Dispatch.AllowedPatterns = splitAndTrim(allowStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if os.Getenv(TokenEnvVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment or .env before serving build requests.\n", TokenEnvVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func splitRepo(s string) (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
