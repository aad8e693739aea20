package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/vfiber/internal/config"
	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/fiber"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬  ┬┌─┐┬┌┐ ┌─┐┬─┐
  └┐┌┘├┤ │├┴┐├┤ ├┬┘
   └┘ └  ┴└─┘└─┘┴└─
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vfiber",
		Short: "Incremental virtual-tree reconciler",
		Long: `vfiber renders component trees into a host tree incrementally.

Rendering work is split into units that run in time-bounded slices,
and the resulting changes are committed to the host in one pass.
The CLI renders the bundled demo apps to HTML and serves them live
with every commit streamed over a websocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)
	return cmd
}

// loadConfig loads vfiber.json from dir, or defaults when dir has none.
func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if root, err := config.FindProjectRoot(wd); err == nil {
			dir = root
		}
	}
	return config.LoadOrDefault(dir)
}

// newLogger builds the text logger for level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// reconcilerOptions maps the scheduler section to reconciler options.
func reconcilerOptions(cfg *config.Config, logger *slog.Logger) []fiber.Option {
	return []fiber.Option{
		fiber.WithLogger(logger),
		fiber.WithMinBudget(cfg.Scheduler.MinBudget.Std()),
		fiber.WithHookOrderCheck(cfg.Scheduler.HookOrderCheck),
		fiber.WithFlushLimit(cfg.Scheduler.FlushLimit),
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s\n", fmt.Sprintf(format, args...))
}
