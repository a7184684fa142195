package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/zen-figurl/internal/config"
	"github.com/ziadkadry99/zen-figurl/internal/db"
	"github.com/ziadkadry99/zen-figurl/internal/dispatch"
	"github.com/ziadkadry99/zen-figurl/internal/metrics"
	"github.com/ziadkadry99/zen-figurl/internal/page"
	"github.com/ziadkadry99/zen-figurl/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the site viewer and build-trigger server",
	Long: `Starts the zenfigurl server: the home and site pages, the build-request
workflow behind them, and the endpoint that dispatches CI site builds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		// Open database.
		dbPath := filepath.Join(cfg.Server.DataDir, "zenfigurl.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		rec := metrics.NewPrometheusRecorder(nil)
		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
		}, rec.Handler())

		visits, err := registerAllRoutes(srv, cfg, database, rec)
		if err != nil {
			return err
		}
		defer visits.Close()

		pruner, err := visits.StartPruner(cfg.Visits.PruneInterval)
		if err != nil {
			return err
		}
		defer pruner.Stop()

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "zenfigurl server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Sites: %s (%s resolver)\n", cfg.Hosting.BaseURL, cfg.Resolver)
		fmt.Fprintf(os.Stderr, "  Build trigger: %s\n", cfg.TriggerURL())
		if cfg.Dispatch.Token == "" {
			slog.Warn("No GitHub token configured; build requests will be rejected",
				slog.String("env", config.TokenEnvVar))
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// registerAllRoutes wires the dispatcher and the pages onto the server and
// returns the visit store backing the pages.
func registerAllRoutes(srv *server.Server, cfg *config.Config, database *db.DB, rec metrics.Recorder) (*page.Store, error) {
	r := srv.Router()

	// Workflow dispatcher
	gh, err := dispatch.NewGitHubDispatcher(dispatch.GitHubConfig{
		Owner:    cfg.Dispatch.Owner,
		Repo:     cfg.Dispatch.Repo,
		Workflow: cfg.Dispatch.Workflow,
		Branch:   cfg.Dispatch.Branch,
		APIURL:   cfg.Dispatch.APIURL,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring workflow dispatch: %w", err)
	}
	dh, err := dispatch.NewHandler(gh, dispatch.NewStore(database), dispatch.Options{
		Token:           cfg.Dispatch.Token,
		AllowedPatterns: cfg.Dispatch.AllowedPatterns,
		Recorder:        rec,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring dispatch handler: %w", err)
	}
	dispatch.RegisterRoutes(r, dh)

	// Pages
	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}
	renderer, err := page.NewRenderer()
	if err != nil {
		return nil, err
	}
	store := page.NewStore(page.Deps{
		Resolver:  resolver,
		Checker:   newProber(cfg, rec),
		Requester: newBuildClient(cfg),
		Recorder:  rec,
	}, cfg.Visits.TTL)
	page.RegisterRoutes(r, page.NewHandler(store, renderer, cfg.Probe.Timeout))

	return store, nil
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
