package fiber

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

func startLoop(t *testing.T, l *Loop) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		errc <- l.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return cancel, errc
}

func TestLoopRendersAndHandlesEvents(t *testing.T) {
	r, host := newTestReconciler(t)
	l := NewLoop(r, WithSliceBudget(time.Millisecond))

	commits := make(chan CommitStats, 8)
	l.OnCommit(func(s CommitStats) { commits <- s })
	startLoop(t, l)

	ctx := context.Background()
	err := l.Do(ctx, func(r *Reconciler) error {
		return r.Render(vdom.Build(counter, nil), host.Container())
	})
	if err != nil {
		t.Fatal(err)
	}
	waitCommit(t, commits)

	err = l.Dispatch(func() {
		_ = host.Dispatch(host.FindByTag("button").ID, "click", vdom.Event{})
	})
	if err != nil {
		t.Fatal(err)
	}
	if s := waitCommit(t, commits); s.Root {
		t.Error("click should commit a partial generation")
	}

	var text string
	_ = l.Do(ctx, func(*Reconciler) error {
		text = host.FindByTag("button").TextContent()
		return nil
	})
	if text != "Count: 1" {
		t.Errorf("text = %q", text)
	}
}

func TestLoopReportsErrors(t *testing.T) {
	r, host := newTestReconciler(t)
	l := NewLoop(r)

	errs := make(chan error, 1)
	l.OnError(func(err error) { errs <- err })
	startLoop(t, l)

	bad := func(vdom.Hooks, vdom.Props) *vdom.VNode { panic("boom") }
	_ = l.Do(context.Background(), func(r *Reconciler) error {
		return r.Render(vdom.Build(bad, nil), host.Container())
	})

	select {
	case err := <-errs:
		if err == nil {
			t.Error("expected an error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error reported")
	}
}

func TestLoopStop(t *testing.T) {
	r, _ := newTestReconciler(t)
	l := NewLoop(r)
	cancel, done := startLoop(t, l)

	cancel()
	select {
	case err := <-done:
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	if err := l.Dispatch(func() {}); !stderrors.Is(err, ErrLoopStopped) {
		t.Errorf("Dispatch = %v, want ErrLoopStopped", err)
	}
	if err := l.Do(context.Background(), func(*Reconciler) error { return nil }); !stderrors.Is(err, ErrLoopStopped) {
		t.Errorf("Do = %v, want ErrLoopStopped", err)
	}
	if err := l.Run(context.Background()); err == nil {
		t.Error("second Run should fail")
	}
}

func TestLoopSurvivesTaskPanic(t *testing.T) {
	r, _ := newTestReconciler(t)
	l := NewLoop(r)
	startLoop(t, l)

	_ = l.Dispatch(func() { panic("task failed") })
	ran := false
	if err := l.Do(context.Background(), func(*Reconciler) error { ran = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("loop stopped running tasks after a panic")
	}
}

func waitCommit(t *testing.T, commits <-chan CommitStats) CommitStats {
	t.Helper()
	select {
	case s := <-commits:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a commit")
		return CommitStats{}
	}
}
