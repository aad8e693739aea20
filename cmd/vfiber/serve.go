package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/vfiber/internal/demo"
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/host/memhost"
	"github.com/vango-dev/vfiber/pkg/stream"
)

func serveCmd() *cobra.Command {
	var (
		configDir string
		appName   string
		port      int
		host      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo app and stream its commits",
		Long: `Serve a demo app over HTTP.

The page shows the current host tree. Events posted by the page are
dispatched to the reconciler loop, and the mutations of every commit
are streamed to websocket subscribers on /ws. Prometheus metrics are
served on /metrics.

Examples:
  vfiber serve
  vfiber serve --app clock --port 8080
  vfiber serve --config ./site`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			app, err := demo.Lookup(appName)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level)

			reg := prometheus.NewRegistry()
			opts := reconcilerOptions(cfg, logger)
			if cfg.Metrics.Enabled {
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				metrics := fiber.NewMetrics(
					fiber.WithRegistry(reg),
					fiber.WithNamespace(cfg.Metrics.Namespace),
				)
				opts = append(opts, fiber.WithMetrics(metrics))
			}

			tree := memhost.New("main")
			r := fiber.New(tree, opts...)
			loop := fiber.NewLoop(r, fiber.WithSliceBudget(cfg.Scheduler.SliceBudget.Std()))
			server := stream.New(loop, tree, stream.Config{
				Address:   cfg.Address(),
				Title:     "vfiber · " + app.Name,
				Registry:  reg,
				Namespace: cfg.Metrics.Namespace,
				Logger:    logger,
			})

			if err := loop.Dispatch(func() {
				if err := r.Render(app.Root(loop.Dispatch), tree.Container()); err != nil {
					logger.Error("render failed", "error", err)
				}
			}); err != nil {
				return err
			}

			printBanner()
			success("Serving %s on %s", app.Name, cfg.URL())
			info("metrics: %s/metrics", cfg.URL())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", "", "Directory containing vfiber.json")
	cmd.Flags().StringVarP(&appName, "app", "a", "counter", "Demo app to serve")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vfiber.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vfiber.json)")

	return cmd
}
