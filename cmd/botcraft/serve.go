package main

import (
	"net/http"
	"time"

	"github.com/aretw0/botcraft/internal/cli"
	api "github.com/aretw0/botcraft/pkg/adapters/http"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/observability"
	"github.com/aretw0/botcraft/pkg/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editor API",
	Long: `Serves editing sessions over HTTP (see /swagger) with live graph diffs on
/sessions/{id}/events. Prometheus metrics are exposed on a separate address.
Sessions live in memory unless BOTCRAFT_REDIS_URL is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		logger := cli.NewLogger(cfg.LogLevel, false)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		store, err := cli.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		metrics := observability.New(true)
		opts := []session.Option{
			session.WithLogger(logger),
			session.WithEditorOptions(
				editor.WithLogger(logger),
				editor.WithHooks(metrics.EditorHooks()),
			),
		}
		if store.Locker != nil {
			opts = append(opts, session.WithLocker(store.Locker))
		}
		sessions := session.NewManager(store.GraphStore, opts...)

		handler := api.NewHandler(sessions,
			api.WithRunner(cli.NewRunner(cfg, logger, metrics.RunHooks())),
			api.WithLogger(logger),
			api.WithAllowedOrigins(cfg.AllowedOrigins...),
		)

		servers := []*http.Server{{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}}
		if cfg.MetricsAddr != "" {
			servers = append(servers, &http.Server{
				Addr:              cfg.MetricsAddr,
				Handler:           metrics.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			})
		}

		logger.Info("Starting botcraft server", "addr", cfg.Addr, "metrics", cfg.MetricsAddr, "backend", cfg.ExecuteURL())
		if err := cli.Serve(ctx, logger, servers...); err != nil {
			return err
		}
		logger.Info("Server stopped gracefully", "signal", ctx.Signal())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address of the editor API; overrides BOTCRAFT_ADDR")
	serveCmd.Flags().String("metrics-addr", ":2112", "Address of the metrics endpoint, empty to disable; overrides BOTCRAFT_METRICS_ADDR")
}
