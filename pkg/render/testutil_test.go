package render

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/host/memhost"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// mount renders desc into a fresh memhost and returns the host.
func mount(t *testing.T, desc *vdom.VNode) *memhost.Host {
	t.Helper()
	host := memhost.New("root")
	r := fiber.New(host, fiber.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := r.Render(desc, host.Container()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := r.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return host
}

func renderChildren(t *testing.T, renderer *Renderer, host *memhost.Host) string {
	t.Helper()
	var b strings.Builder
	if err := renderer.RenderChildren(&b, host.Container()); err != nil {
		t.Fatalf("RenderChildren: %v", err)
	}
	return b.String()
}
