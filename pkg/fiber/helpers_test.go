package fiber

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/vfiber/pkg/host/memhost"
	"github.com/vango-dev/vfiber/pkg/protocol"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReconciler(t *testing.T, opts ...Option) (*Reconciler, *memhost.Host) {
	t.Helper()
	host := memhost.New("root")
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(host, opts...), host
}

func render(t *testing.T, r *Reconciler, host *memhost.Host, desc *vdom.VNode) {
	t.Helper()
	if err := r.Render(desc, host.Container()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	flush(t, r)
}

func flush(t *testing.T, r *Reconciler) {
	t.Helper()
	if err := r.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func countOps(muts []protocol.Mutation, op protocol.Op) int {
	n := 0
	for _, m := range muts {
		if m.Op == op {
			n++
		}
	}
	return n
}

// liveInTree counts the fibers reachable from the committed root.
func liveInTree(r *Reconciler) int {
	n := 0
	_ = r.arena.walk(r.committedRoot, func(fiberID, *fiber) error {
		n++
		return nil
	})
	return n
}
