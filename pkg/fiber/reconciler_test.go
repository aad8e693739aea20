package fiber

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/host/memhost"
	"github.com/vango-dev/vfiber/pkg/protocol"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

func TestRenderMatchesDescription(t *testing.T) {
	r, host := newTestReconciler(t)

	render(t, r, host, vdom.Div(vdom.Class("app"),
		vdom.H1("Title"),
		vdom.Ul(vdom.Li("a"), vdom.Li("b")),
		vdom.P("n = ", 1),
	))

	want := strings.Join([]string{
		`div class="app"`,
		`  h1`,
		`    "Title"`,
		`  ul`,
		`    li`,
		`      "a"`,
		`    li`,
		`      "b"`,
		`  p`,
		`    "n = "`,
		`    "1"`,
		``,
	}, "\n")
	if got := host.String(); got != want {
		t.Errorf("host tree:\n%s\nwant:\n%s", got, want)
	}

	stats := r.LastCommit()
	if !stats.Root {
		t.Error("first commit should be a root generation")
	}
	if stats.Deletions != 0 {
		t.Errorf("Deletions = %d, want 0", stats.Deletions)
	}
	if stats.Creates != 11 {
		t.Errorf("Creates = %d, want 11", stats.Creates)
	}
}

func TestRerenderUnchanged(t *testing.T) {
	r, host := newTestReconciler(t)
	click := &vdom.Handler{Fn: func() {}}

	describe := func() *vdom.VNode {
		return vdom.Div(
			vdom.Button(vdom.OnClick(click), "go"),
			vdom.Span(vdom.ID("x"), 42),
		)
	}

	render(t, r, host, describe())
	host.Drain()
	render(t, r, host, describe())

	stats := r.LastCommit()
	if stats.Placements != 0 || stats.Deletions != 0 {
		t.Errorf("placements=%d deletions=%d, want 0", stats.Placements, stats.Deletions)
	}
	if stats.Patched != 0 {
		t.Errorf("Patched = %d, want 0", stats.Patched)
	}
	if muts := host.Drain(); len(muts) != 0 {
		t.Errorf("unchanged render mutated the host: %v", muts)
	}
}

func TestRerenderUpdatesChangedAttributesOnly(t *testing.T) {
	r, host := newTestReconciler(t)

	render(t, r, host, vdom.Div(vdom.Class("a"), vdom.Span("same")))
	host.Drain()
	render(t, r, host, vdom.Div(vdom.Class("b"), vdom.Span("same")))

	stats := r.LastCommit()
	if stats.Patched != 1 {
		t.Errorf("Patched = %d, want 1", stats.Patched)
	}
	muts := host.Drain()
	if len(muts) != 1 || muts[0].Op != protocol.OpSetAttr || muts[0].Value != "b" {
		t.Errorf("mutations = %v", muts)
	}
}

func TestEventRebindOnIdentityChange(t *testing.T) {
	r, host := newTestReconciler(t)

	render(t, r, host, vdom.Button(vdom.OnClick(func() {}), "x"))
	host.Drain()
	render(t, r, host, vdom.Button(vdom.OnClick(func() {}), "x"))

	muts := host.Drain()
	if countOps(muts, protocol.OpDetach) != 1 || countOps(muts, protocol.OpAttach) != 1 {
		t.Errorf("new handler should detach and attach once: %v", muts)
	}
}

func TestKindChangeReplacesSubtree(t *testing.T) {
	r, host := newTestReconciler(t)

	render(t, r, host, vdom.Div(vdom.Span(vdom.B("bold"), "tail")))
	span := host.FindByTag("span")
	bold := host.FindByTag("b")

	render(t, r, host, vdom.Div(vdom.P("para")))

	stats := r.LastCommit()
	if stats.Deletions != 1 {
		t.Errorf("Deletions = %d, want 1", stats.Deletions)
	}
	// p and its text child
	if stats.Placements != 2 {
		t.Errorf("Placements = %d, want 2", stats.Placements)
	}
	if host.Find(span.ID) != nil || host.Find(bold.ID) != nil {
		t.Error("old subtree should be removed from the host")
	}
	if got := host.String(); got != "div\n  p\n    \"para\"\n" {
		t.Errorf("host tree = %q", got)
	}
}

func TestPositionalDiffShrink(t *testing.T) {
	r, host := newTestReconciler(t)

	render(t, r, host, vdom.Div(vdom.Span("A"), vdom.P("B")))
	host.Drain()

	// [A, B] -> [B]: position 0 changes kind, position 1 disappears.
	render(t, r, host, vdom.Div(vdom.P("B")))

	stats := r.LastCommit()
	if stats.Deletions != 2 {
		t.Errorf("Deletions = %d, want 2 (old A and old B)", stats.Deletions)
	}
	if stats.Placements != 2 {
		t.Errorf("Placements = %d, want 2 (new B and its text)", stats.Placements)
	}
	muts := host.Drain()
	if countOps(muts, protocol.OpRemove) != 2 {
		t.Errorf("removes = %d, want 2: %v", countOps(muts, protocol.OpRemove), muts)
	}
	if got := host.String(); got != "div\n  p\n    \"B\"\n" {
		t.Errorf("host tree = %q", got)
	}
}

func TestReconcileChildrenTags(t *testing.T) {
	r, host := newTestReconciler(t)
	render(t, r, host, vdom.Div(vdom.Span("A"), vdom.P("B")))

	root := r.arena.get(r.committedRoot)
	oldDiv := root.child
	oldA := r.arena.get(oldDiv).child
	oldB := r.arena.get(oldA).sibling

	// A fresh fiber standing in for the div of the next generation.
	id, f := r.arena.alloc()
	f.typ = r.arena.get(oldDiv).typ
	f.alternate = oldDiv

	r.reconcileChildren(id, []*vdom.VNode{vdom.P("B")})

	first := r.arena.get(f.child)
	if first.tag != Placement || first.alternate != 0 {
		t.Errorf("position 0: tag=%s alternate=%d, want placement without alternate", first.tag, first.alternate)
	}
	if first.sibling != 0 {
		t.Error("only one fiber should be produced")
	}
	if r.arena.get(oldA).tag != Deletion || r.arena.get(oldB).tag != Deletion {
		t.Error("both old fibers should be tagged for deletion")
	}
	if len(r.deletions) != 2 || r.deletions[0] != oldA || r.deletions[1] != oldB {
		t.Errorf("deletions = %v, want [%d %d]", r.deletions, oldA, oldB)
	}
}

func TestPlacementKeepsSiblingOrder(t *testing.T) {
	r, host := newTestReconciler(t)

	render(t, r, host, vdom.Div(vdom.Div("1"), vdom.Span("2"), vdom.Div("3")))
	render(t, r, host, vdom.Div(vdom.Div("1"), vdom.P("2"), vdom.Div("3")))

	want := "div\n  div\n    \"1\"\n  p\n    \"2\"\n  div\n    \"3\"\n"
	if got := host.String(); got != want {
		t.Errorf("host tree:\n%s\nwant:\n%s", got, want)
	}
	if countOps(host.Mutations(), protocol.OpInsert) != 1 {
		t.Error("the new p should be inserted before the last div")
	}
}

func TestRenderValidation(t *testing.T) {
	r, host := newTestReconciler(t)

	if err := r.Render(nil, host.Container()); errors.Code(err) != errors.CodeInvalidRender {
		t.Errorf("nil description: %v", err)
	}
	if err := r.Render(vdom.Div(), nil); errors.Code(err) != errors.CodeInvalidRender {
		t.Errorf("nil container: %v", err)
	}

	render(t, r, host, vdom.Div())
	other := memhost.New("other")
	if err := r.Render(vdom.Div(), other.Container()); errors.Code(err) != errors.CodeInvalidRender {
		t.Errorf("second container: %v", err)
	}

	if err := r.Unmount(); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(vdom.Div(), host.Container()); !stderrors.Is(err, ErrUnmounted) {
		t.Errorf("after unmount: %v", err)
	}
	if _, err := r.RunSlice(context.Background(), Unlimited()); !stderrors.Is(err, ErrUnmounted) {
		t.Errorf("RunSlice after unmount: %v", err)
	}
}

func TestRenderWhileInFlightIsQueued(t *testing.T) {
	r, host := newTestReconciler(t)

	if err := r.Render(vdom.Div(vdom.P("one"), vdom.P("two")), host.Container()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RunSlice(context.Background(), Units(1)); err != nil {
		t.Fatal(err)
	}

	// Two more renders while the first is in flight: only the latest runs.
	_ = r.Render(vdom.Div(vdom.P("stale")), host.Container())
	_ = r.Render(vdom.Div(vdom.P("latest")), host.Container())

	res, err := r.RunSlice(context.Background(), Unlimited())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Committed || res.Idle {
		t.Errorf("first generation should commit with the render still queued: %+v", res)
	}
	if !strings.Contains(host.String(), `"two"`) {
		t.Error("in-flight generation should commit unchanged")
	}

	flush(t, r)
	if got := host.String(); got != "div\n  p\n    \"latest\"\n" {
		t.Errorf("host tree = %q", got)
	}
}

func TestHostFailureAbandonsGeneration(t *testing.T) {
	r, host := newTestReconciler(t)
	render(t, r, host, vdom.Div(vdom.P("kept")))
	before := host.String()
	live := r.arena.live

	boom := stderrors.New("device lost")
	host.FailOn(protocol.OpCreate, boom)
	_ = r.Render(vdom.Div(vdom.P("kept"), vdom.Span("new")), host.Container())

	_, err := r.RunSlice(context.Background(), Unlimited())
	if errors.Code(err) != errors.CodeHostFailure {
		t.Fatalf("err = %v, want E202", err)
	}
	if !stderrors.Is(err, boom) {
		t.Error("host error should be wrapped")
	}
	if r.Pending() {
		t.Error("failed generation should be abandoned")
	}
	if host.String() != before {
		t.Errorf("host changed:\n%s", host.String())
	}
	if r.arena.live != live {
		t.Errorf("live fibers = %d, want %d", r.arena.live, live)
	}

	host.FailOn(protocol.OpCreate, nil)
	render(t, r, host, vdom.Div(vdom.P("kept"), vdom.Span("new")))
	if !strings.Contains(host.String(), `"new"`) {
		t.Error("render after failure should succeed")
	}
}

func TestHostFailureDuringCommit(t *testing.T) {
	r, host := newTestReconciler(t)
	render(t, r, host, vdom.Div(vdom.P("x")))

	host.FailOn(protocol.OpRemove, stderrors.New("busy"))
	_ = r.Render(vdom.Div(), host.Container())
	if err := r.Flush(context.Background()); errors.Code(err) != errors.CodeHostFailure {
		t.Fatalf("err = %v, want E202", err)
	}
	if r.Pending() {
		t.Error("generation should be abandoned")
	}
}

func TestUnmountRemovesTree(t *testing.T) {
	r, host := newTestReconciler(t)
	render(t, r, host, vdom.Div(vdom.P("a")))

	if err := r.Unmount(); err != nil {
		t.Fatal(err)
	}
	if len(host.Container().Children) != 0 {
		t.Errorf("container not empty:\n%s", host.String())
	}
	if r.arena.live != 0 {
		t.Errorf("live fibers = %d, want 0", r.arena.live)
	}
	if err := r.Unmount(); err != nil {
		t.Errorf("second Unmount: %v", err)
	}
}

func TestArenaReusesSlots(t *testing.T) {
	r, host := newTestReconciler(t)
	describe := func(n int) *vdom.VNode {
		return vdom.Ul(vdom.Repeat(3, func(i int) *vdom.VNode { return vdom.Li(i + n) }))
	}

	render(t, r, host, describe(0))
	want := liveInTree(r)
	size := len(r.arena.nodes)

	for i := 1; i <= 5; i++ {
		render(t, r, host, describe(i))
	}
	if r.arena.live != want {
		t.Errorf("live = %d, want %d", r.arena.live, want)
	}
	if len(r.arena.nodes) > 2*size {
		t.Errorf("arena grew from %d to %d slots", size, len(r.arena.nodes))
	}
}

//go:noinline
func labelComponent(text string) vdom.Component {
	return func(vdom.Hooks, vdom.Props) *vdom.VNode {
		return vdom.Span(text)
	}
}

func TestRerenderUsesNewClosure(t *testing.T) {
	r, host := newTestReconciler(t)

	render(t, r, host, vdom.Div(vdom.Build(labelComponent("a"), nil)))
	render(t, r, host, vdom.Div(vdom.Build(labelComponent("b"), nil)))

	if stats := r.LastCommit(); stats.Placements != 0 {
		t.Errorf("Placements = %d, want 0 for the same component", stats.Placements)
	}
	span := host.FindByTag("span")
	if span == nil || len(span.Children) != 1 {
		t.Fatalf("host tree:\n%s", host.String())
	}
	if got := span.Children[0].Text; got != "b" {
		t.Errorf("text = %q, want %q", got, "b")
	}
}
