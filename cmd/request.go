package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/zen-figurl/internal/buildrequest"
	"github.com/ziadkadry99/zen-figurl/internal/page"
)

var (
	requestZone    string
	requestTrigger string
)

var requestCmd = &cobra.Command{
	Use:   "request <site-uri>",
	Short: "Ask CI to build the site for a site URI",
	Long: `Sends a build request to the build-trigger endpoint (build.trigger_url,
or a local zenfigurl server). Submit the request once; the build takes a few
minutes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if requestTrigger != "" {
			cfg.Build.TriggerURL = requestTrigger
		}
		resolver, err := newResolver(cfg)
		if err != nil {
			return err
		}
		uri := args[0]
		if res := resolver.Resolve(uri, requestZone); !res.Valid {
			return fmt.Errorf("invalid site URI: %s", uri)
		}

		wf := buildrequest.NewWorkflow(newBuildClient(cfg), uri, requestZone)
		fmt.Println(page.MessageRequesting)
		<-wf.Trigger(context.Background())

		snap := wf.Snapshot()
		if snap.Status == buildrequest.StatusError {
			return fmt.Errorf("%s: %s", page.MessageError, snap.ErrorMessage)
		}
		fmt.Println(page.MessageRequested)
		return nil
	},
}

func init() {
	requestCmd.Flags().StringVar(&requestZone, "zone", "", "kachery zone for sha1:// URIs (default \"default\")")
	requestCmd.Flags().StringVar(&requestTrigger, "trigger-url", "", "build-trigger endpoint (overrides build.trigger_url)")
	rootCmd.AddCommand(requestCmd)
}
