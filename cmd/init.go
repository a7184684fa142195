package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/zen-figurl/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize zenfigurl configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the resolver, hosting URL and build workflow, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
