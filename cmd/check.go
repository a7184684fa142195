package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/zen-figurl/internal/metrics"
	"github.com/ziadkadry99/zen-figurl/internal/probe"
	"github.com/ziadkadry99/zen-figurl/internal/progress"
)

var (
	checkZone        string
	checkFile        string
	checkConcurrency int
	checkFailMissing bool
)

var checkCmd = &cobra.Command{
	Use:   "check [site-uri...]",
	Short: "Check whether sites have been built and published",
	Long: `Resolves each site URI and probes the hosted index.html. URIs come from
the arguments and, with --file, from a file with one URI per line ('#' starts
a comment).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver, err := newResolver(cfg)
		if err != nil {
			return err
		}

		uris := append([]string(nil), args...)
		if checkFile != "" {
			more, err := readURIs(checkFile)
			if err != nil {
				return err
			}
			uris = append(uris, more...)
		}
		if len(uris) == 0 {
			return fmt.Errorf("no site URIs given")
		}

		// Invalid URIs are reported without probing.
		var urls []string
		var probed []string
		for _, uri := range uris {
			res := resolver.Resolve(uri, checkZone)
			if !res.Valid {
				fmt.Printf("INVALID  %s\n", uri)
				continue
			}
			urls = append(urls, res.URL)
			probed = append(probed, uri)
		}

		reporter := progress.NewReporter(os.Stderr)
		reporter.Start(len(urls), "Checking sites")
		results := probe.CheckAll(context.Background(), newProber(cfg, metrics.NoopRecorder{}), urls, checkConcurrency,
			func(done, total int, res probe.Result) {
				reporter.Update(done, res.URL)
			})

		found := 0
		for i, res := range results {
			state := "MISSING"
			if res.Found {
				state = "FOUND"
				found++
			}
			detail := ""
			if res.ErrClass != "" {
				detail = " (" + res.ErrClass + ")"
			} else if res.StatusCode != 0 {
				detail = fmt.Sprintf(" (%d)", res.StatusCode)
			}
			fmt.Printf("%-8s %s %s%s\n", state, probed[i], res.URL, detail)
		}
		reporter.Finish(fmt.Sprintf("%d of %d sites found, %d invalid", found, len(results), len(uris)-len(results)))

		if checkFailMissing && found < len(uris) {
			exitOnError(fmt.Errorf("%d of %d sites are not published", len(uris)-found, len(uris)))
		}
		return nil
	},
}

func readURIs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var uris []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uris = append(uris, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return uris, nil
}

func init() {
	checkCmd.Flags().StringVar(&checkZone, "zone", "", "kachery zone for sha1:// URIs (default \"default\")")
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "file with one site URI per line")
	checkCmd.Flags().IntVar(&checkConcurrency, "concurrency", 4, "maximum probes in flight")
	checkCmd.Flags().BoolVar(&checkFailMissing, "fail-missing", false, "exit non-zero unless every site is published")
	rootCmd.AddCommand(checkCmd)
}
