package vtest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/host/memhost"
	"github.com/vango-dev/vfiber/pkg/render"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// Harness drives one reconciler over an in-memory host. Every method fails
// the test on error.
type Harness struct {
	t    testing.TB
	R    *fiber.Reconciler
	Host *memhost.Host
}

// Mount renders desc into a fresh host and flushes it. Logging is
// discarded unless opts supply a logger. The reconciler is unmounted when
// the test ends.
func Mount(t testing.TB, desc *vdom.VNode, opts ...fiber.Option) *Harness {
	t.Helper()
	host := memhost.New("root")
	opts = append([]fiber.Option{
		fiber.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	h := &Harness{t: t, R: fiber.New(host, opts...), Host: host}
	t.Cleanup(func() { h.R.Unmount() })

	if err := h.R.Render(desc, host.Container()); err != nil {
		t.Fatalf("render: %v", err)
	}
	h.Flush()
	return h
}

// Flush commits all pending work.
func (h *Harness) Flush() {
	h.t.Helper()
	if err := h.R.Flush(context.Background()); err != nil {
		h.t.Fatalf("flush: %v", err)
	}
}

// Find returns the n-th node with tag, and class when class is not empty.
func (h *Harness) Find(tag, class string, n int) *memhost.Node {
	h.t.Helper()
	node := h.find(tag, class, "", n)
	if node == nil {
		h.t.Fatalf("no <%s class=%q> #%d in\n%s", tag, class, n, h.Host)
	}
	return node
}

func (h *Harness) find(tag, class, event string, n int) *memhost.Node {
	var found *memhost.Node
	seen := 0
	h.Host.Walk(func(node *memhost.Node, _ int) {
		if found != nil || node.Tag != tag {
			return
		}
		if class != "" && !hasClass(node, class) {
			return
		}
		if event != "" && node.Listeners[event] == nil {
			return
		}
		if seen == n {
			found = node
		}
		seen++
	})
	return found
}

func hasClass(n *memhost.Node, class string) bool {
	for _, c := range strings.Fields(vdom.ValueString(n.Attrs["class"])) {
		if c == class {
			return true
		}
	}
	return false
}

// Fire dispatches event on the n-th matching node that listens for it and
// flushes the resulting updates.
func (h *Harness) Fire(tag, class string, n int, event string, ev vdom.Event) {
	h.t.Helper()
	node := h.find(tag, class, event, n)
	if node == nil {
		h.t.Fatalf("no <%s class=%q> #%d listening for %s in\n%s", tag, class, n, event, h.Host)
	}
	if err := h.Host.Dispatch(node.ID, event, ev); err != nil {
		h.t.Fatalf("dispatch %s: %v", event, err)
	}
	h.Flush()
}

// Click fires a click on the n-th matching clickable node.
func (h *Harness) Click(tag, class string, n int) {
	h.t.Helper()
	h.Fire(tag, class, n, "click", vdom.Event{})
}

// Input fires an input event carrying value.
func (h *Harness) Input(tag, class string, n int, value string) {
	h.t.Helper()
	h.Fire(tag, class, n, "input", vdom.Event{Value: value})
}

// Text returns the text content of the first node with tag.
func (h *Harness) Text(tag string) string {
	h.t.Helper()
	return h.Find(tag, "", 0).TextContent()
}

// HTML renders the host tree below the container without node ids.
func (h *Harness) HTML() string {
	h.t.Helper()
	var buf bytes.Buffer
	r := render.NewRenderer(render.RendererConfig{OmitIDs: true})
	if err := r.RenderChildren(&buf, h.Host.Container()); err != nil {
		h.t.Fatalf("render html: %v", err)
	}
	return buf.String()
}

// ExpectContains asserts that the rendered tree contains expected.
func ExpectContains(t testing.TB, h *Harness, expected string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered tree does not contain
// unexpected.
func ExpectNotContains(t testing.TB, h *Harness, unexpected string) {
	t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that the rendered tree contains a tag.
func ExpectElement(t testing.TB, h *Harness, tag string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that the rendered tree contains attr="value".
func ExpectAttribute(t testing.TB, h *Harness, attr, value string) {
	t.Helper()
	html := h.HTML()
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
