package fiber

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/vango-dev/vfiber/pkg/protocol"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

func TestRunSliceIdle(t *testing.T) {
	r, _ := newTestReconciler(t)

	res, err := r.RunSlice(context.Background(), Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Idle || res.Units != 0 || res.Committed {
		t.Errorf("res = %+v, want idle", res)
	}
}

func TestSlicedGenerationCommitsOnce(t *testing.T) {
	r, host := newTestReconciler(t)

	// root, div, two p and two text nodes
	if err := r.Render(vdom.Div(vdom.P("a"), vdom.P("b")), host.Container()); err != nil {
		t.Fatal(err)
	}

	total, slices := 0, 0
	for {
		res, err := r.RunSlice(context.Background(), Units(1))
		if err != nil {
			t.Fatal(err)
		}
		slices++
		total += res.Units
		if res.Units != 1 {
			t.Fatalf("slice %d processed %d units, want 1", slices, res.Units)
		}
		if res.Committed {
			break
		}
		if !res.Yielded {
			t.Fatalf("slice %d neither yielded nor committed: %+v", slices, res)
		}
		muts := host.Mutations()
		if n := countOps(muts, protocol.OpAppend) + countOps(muts, protocol.OpInsert); n != 0 {
			t.Fatalf("host tree changed before commit: %v", muts)
		}
		if len(host.Container().Children) != 0 {
			t.Fatal("container has children before commit")
		}
	}

	if total != 6 || slices != 6 {
		t.Errorf("units=%d slices=%d, want 6 and 6", total, slices)
	}
	if got := r.LastCommit().Units; got != 6 {
		t.Errorf("LastCommit().Units = %d, want 6", got)
	}
	if got := host.FindByTag("div").TextContent(); got != "ab" {
		t.Errorf("text = %q", got)
	}
}

func TestExpiredBudgetStillMakesProgress(t *testing.T) {
	r, host := newTestReconciler(t)
	_ = r.Render(vdom.Div(vdom.P("a")), host.Container())

	res, err := r.RunSlice(context.Background(), Budget(0))
	if err != nil {
		t.Fatal(err)
	}
	if res.Units != 1 || !res.Yielded {
		t.Errorf("res = %+v, want one unit then yield", res)
	}
}

func TestCanceledContextYields(t *testing.T) {
	r, host := newTestReconciler(t)
	_ = r.Render(vdom.Div(vdom.P("a")), host.Container())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.RunSlice(ctx, Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	if res.Units != 1 || !res.Yielded {
		t.Errorf("res = %+v, want one unit then yield", res)
	}
	if err := r.Flush(ctx); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Flush err = %v, want context.Canceled", err)
	}

	flush(t, r)
	if host.FindByTag("p") == nil {
		t.Error("generation should finish once resumed")
	}
}

func TestMinBudget(t *testing.T) {
	r, host := newTestReconciler(t, WithMinBudget(time.Hour))
	_ = r.Render(vdom.Div(vdom.P("a")), host.Container())

	res, err := r.RunSlice(context.Background(), Budget(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if res.Units != 1 || !res.Yielded {
		t.Errorf("res = %+v, want one unit then yield", res)
	}
}

func TestFlushLimitStopsUpdateStorm(t *testing.T) {
	r, host := newTestReconciler(t, WithFlushLimit(3))

	renders := 0
	loop := func(h vdom.Hooks, props vdom.Props) *vdom.VNode {
		renders++
		n, set := UseState(h, 0)
		UseEffect(h, func() func() {
			set.Set(n + 1)
			return nil
		}, nil)
		return vdom.Span(n)
	}

	_ = r.Render(vdom.Build(loop, nil), host.Container())
	err := r.Flush(context.Background())
	if !stderrors.Is(err, ErrUpdateStorm) {
		t.Fatalf("err = %v, want update storm", err)
	}
	if renders != 3 {
		t.Errorf("renders = %d, want 3", renders)
	}
	if r.Pending() {
		t.Error("queued updates should be dropped after a storm")
	}
	if got := host.FindByTag("span").TextContent(); got != "2" {
		t.Errorf("text = %q, want 2", got)
	}
}

func TestUnmountedReconciler(t *testing.T) {
	r, host := newTestReconciler(t)
	render(t, r, host, vdom.P("x"))

	if err := r.Unmount(); err != nil {
		t.Fatal(err)
	}
	if err := r.Unmount(); err != nil {
		t.Errorf("second Unmount = %v", err)
	}
	if err := r.Render(vdom.P("y"), host.Container()); !stderrors.Is(err, ErrUnmounted) {
		t.Errorf("Render err = %v, want ErrUnmounted", err)
	}
	if _, err := r.RunSlice(context.Background(), Unlimited()); !stderrors.Is(err, ErrUnmounted) {
		t.Errorf("RunSlice err = %v, want ErrUnmounted", err)
	}
	if r.arena.live != 0 {
		t.Errorf("live fibers = %d, want 0", r.arena.live)
	}
}
