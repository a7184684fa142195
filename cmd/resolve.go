package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/zen-figurl/internal/route"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

var (
	resolveZone string
	resolveJSON bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <site-uri>",
	Short: "Print the hosting URL for a site URI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver, err := newResolver(cfg)
		if err != nil {
			return err
		}

		uri := args[0]
		res := resolver.Resolve(uri, resolveZone)
		if resolveJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"site_uri":     uri,
				"kachery_zone": siteuri.NormalizeZone(resolveZone),
				"valid":        res.Valid,
				"url":          res.URL,
				"page":         route.Path(route.Site(uri, resolveZone)),
			})
		}
		if !res.Valid {
			return fmt.Errorf("invalid site URI: %s", uri)
		}
		fmt.Println(res.URL)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveZone, "zone", "", "kachery zone (default \"default\")")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print a JSON report")
	rootCmd.AddCommand(resolveCmd)
}
