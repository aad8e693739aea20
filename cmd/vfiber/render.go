package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/vfiber/internal/config"
	"github.com/vango-dev/vfiber/internal/demo"
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/host/memhost"
	"github.com/vango-dev/vfiber/pkg/render"
	"github.com/vango-dev/vfiber/pkg/snapshot"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

type renderOptions struct {
	configDir string
	app       string
	clicks    int
	out       string
	store     bool
	pretty    bool
	stats     bool
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a demo app to HTML",
		Long: `Render a demo app into an in-memory host and print the resulting HTML.

With --clicks the first clickable element is clicked that many times,
each click committed before the next.

Output goes to stdout unless --out names a file or an s3://bucket/key
location, or --store writes it to the configured snapshot store.

Examples:
  vfiber render --app counter --clicks 3
  vfiber render --app todo --clicks 2 --out todo.html
  vfiber render --app counter --out s3://my-bucket/counter.html
  vfiber render --app todo --store`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configDir, "config", "c", "", "Directory containing vfiber.json")
	cmd.Flags().StringVarP(&opts.app, "app", "a", "counter", "Demo app to render")
	cmd.Flags().IntVarP(&opts.clicks, "clicks", "n", 0, "Number of clicks before rendering")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file or s3://bucket/key")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Write to the configured snapshot store")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", true, "Indent the HTML")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print commit statistics to stderr")

	return cmd
}

func runRender(cmd *cobra.Command, opts renderOptions) error {
	cfg, err := loadConfig(opts.configDir)
	if err != nil {
		return err
	}
	app, err := demo.Lookup(opts.app)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	host := memhost.New("main")
	r := fiber.New(host, reconcilerOptions(cfg, logger)...)
	defer r.Unmount()

	if err := r.Render(app.Root(nil), host.Container()); err != nil {
		return err
	}
	if err := r.Flush(ctx); err != nil {
		return err
	}
	if opts.stats {
		info("mount: %s", r.LastCommit())
	}

	for i := 0; i < opts.clicks; i++ {
		target := firstClickable(host)
		if target == nil {
			return fmt.Errorf("app %q has nothing to click", app.Name)
		}
		if err := host.Dispatch(target.ID, "click", vdom.Event{}); err != nil {
			return err
		}
		if err := r.Flush(ctx); err != nil {
			return err
		}
		if opts.stats {
			info("click %d: %s", i+1, r.LastCommit())
		}
	}

	var buf bytes.Buffer
	renderer := render.NewRenderer(render.RendererConfig{Pretty: opts.pretty, OmitIDs: true})
	if err := renderer.RenderChildren(&buf, host.Container()); err != nil {
		return err
	}

	return writeOutput(ctx, cmd, cfg, opts, buf.Bytes())
}

// firstClickable returns the first node in document order with a click
// listener.
func firstClickable(host *memhost.Host) *memhost.Node {
	var target *memhost.Node
	host.Walk(func(n *memhost.Node, depth int) {
		if target == nil && n.Listeners["click"] != nil {
			target = n
		}
	})
	return target
}

func writeOutput(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts renderOptions, html []byte) error {
	const contentType = "text/html; charset=utf-8"

	switch {
	case opts.store:
		store, err := snapshot.Open(cfg)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s/%d.html", opts.app, opts.clicks)
		loc, err := store.Put(ctx, key, contentType, html)
		if err != nil {
			return err
		}
		success("Snapshot written to %s", loc)

	case opts.out != "":
		var store snapshot.Store
		key := filepath.Base(opts.out)
		if bucket, k, ok := snapshot.ParseS3URL(opts.out); ok {
			s3cfg := cfg.Snapshot.S3
			s3cfg.Bucket, s3cfg.Prefix = bucket, ""
			store, key = snapshot.NewS3StoreFromConfig(s3cfg), k
		} else {
			disk, err := snapshot.NewDiskStore(filepath.Dir(opts.out))
			if err != nil {
				return err
			}
			store = disk
		}
		loc, err := store.Put(ctx, key, contentType, html)
		if err != nil {
			return err
		}
		success("Wrote %s", loc)

	default:
		_, err := cmd.OutOrStdout().Write(html)
		return err
	}
	return nil
}
