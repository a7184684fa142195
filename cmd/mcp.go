package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/zen-figurl/internal/metrics"
	mcpserver "github.com/ziadkadry99/zen-figurl/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tools to resolve site URIs, check sites and request site builds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver, err := newResolver(cfg)
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "zenfigurl MCP server started on stdio (sites=%s, trigger=%s)\n", cfg.Hosting.BaseURL, cfg.TriggerURL())

		srv := mcpserver.NewServer(resolver, newProber(cfg, metrics.NoopRecorder{}), newBuildClient(cfg))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
