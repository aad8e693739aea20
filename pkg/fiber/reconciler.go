package fiber

import (
	"log/slog"
	"time"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/vdom"
	"go.opentelemetry.io/otel/trace"
)

// Reconciler owns one rendered tree: the committed generation, the
// generation in flight, the scheduler cursor and the pending deletions.
//
// A Reconciler is not safe for concurrent use. Render, RunSlice and every
// state setter must be called from the goroutine that drives it; Loop does
// that for long-running programs.
type Reconciler struct {
	host   Host
	opts   options
	logger *slog.Logger

	metrics *Metrics
	tracer  trace.Tracer

	arena     *arena
	container Handle

	committedRoot fiberID
	wipRoot       fiberID
	next          fiberID
	deletions     []fiberID

	// requests hold renders and state updates that arrived while a
	// generation was in flight.
	requests []request

	stats     CommitStats
	last      CommitStats
	effectErr error
	unmounted bool
}

type request struct {
	cell *stateCell
	desc *vdom.VNode
}

// SliceResult reports what one RunSlice call did.
type SliceResult struct {
	// Units is the number of fibers processed.
	Units int

	// Yielded is set when the deadline stopped the slice with work left.
	Yielded bool

	// Committed is set when the slice finished a generation and committed it.
	Committed bool

	// Idle is set when no generation is in flight and none is queued.
	Idle bool
}

// CommitStats describes one committed generation.
type CommitStats struct {
	Root       bool // seeded by Render rather than a state update
	Units      int
	Creates    int
	Placements int
	Updates    int
	Patched    int // updates with a non-empty attribute delta
	Deletions  int
	HostOps    int
	EffectsRun int
	Cleanups   int
	Duration   time.Duration
}

// New creates a reconciler that renders into host.
func New(host Host, opts ...Option) *Reconciler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reconciler{
		host:    host,
		opts:    o,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
		arena:   newArena(),
	}
}

// Render schedules a generation that renders desc into container. The first
// call binds the reconciler to container; later calls must pass the same one.
// Nothing is applied to the host until RunSlice or Flush finishes the
// generation.
func (r *Reconciler) Render(desc *vdom.VNode, container Handle) error {
	if r.unmounted {
		return ErrUnmounted
	}
	if desc == nil {
		return errors.New(errors.CodeInvalidRender).WithDetail("description is nil")
	}
	if container == nil {
		return errors.New(errors.CodeInvalidRender).WithDetail("container is nil")
	}
	if r.container != nil && r.container != container {
		return errors.New(errors.CodeInvalidRender).
			WithDetail("the reconciler is already bound to another container").
			WithSuggestion("Create one Reconciler per container")
	}
	r.container = container

	if r.wipRoot != 0 {
		for i := range r.requests {
			if r.requests[i].desc != nil {
				r.requests[i].desc = desc
				return nil
			}
		}
		r.requests = append(r.requests, request{desc: desc})
		return nil
	}
	r.seedRoot(desc)
	return nil
}

// requestUpdate schedules a generation for a state cell whose queue grew.
func (r *Reconciler) requestUpdate(cell *stateCell) {
	if r.unmounted {
		return
	}
	if r.wipRoot != 0 {
		for _, req := range r.requests {
			if req.cell == cell {
				return
			}
		}
		r.requests = append(r.requests, request{cell: cell})
		return
	}
	r.seedCell(cell)
}

// seedRoot starts a generation whose root wraps the container.
func (r *Reconciler) seedRoot(desc *vdom.VNode) {
	id, f := r.arena.alloc()
	f.root = true
	f.typ = vdom.Type{Kind: vdom.KindElement}
	f.handle = r.container
	f.children = []*vdom.VNode{desc}
	f.alternate = r.committedRoot

	r.begin(id, true)
}

// seedCell starts a generation at the fiber that owns cell. Only that
// subtree is processed. Cells that are unmounted or whose queue was already
// drained are skipped.
func (r *Reconciler) seedCell(cell *stateCell) bool {
	if cell.owner == 0 || len(cell.queue) == 0 {
		return false
	}
	owner := r.arena.get(cell.owner)
	if owner == nil {
		return false
	}

	id, f := r.arena.alloc()
	f.typ = owner.typ
	f.props = owner.props
	f.children = owner.children
	f.handle = owner.handle
	f.parent = owner.parent
	f.alternate = cell.owner

	r.begin(id, false)
	return true
}

func (r *Reconciler) begin(id fiberID, root bool) {
	r.wipRoot = id
	r.next = id
	r.deletions = r.deletions[:0]
	r.effectErr = nil
	r.stats = CommitStats{Root: root}
	r.logger.Debug("generation seeded", "root", root, "seed", r.arena.get(id).typ.String())
}

// LastCommit returns statistics of the most recent commit.
func (r *Reconciler) LastCommit() CommitStats {
	return r.last
}

// Unmount discards any generation in flight, runs every remaining effect
// cleanup and removes the rendered tree from the container. The reconciler
// cannot be used afterwards.
func (r *Reconciler) Unmount() error {
	if r.unmounted {
		return nil
	}
	if r.wipRoot != 0 {
		r.abandon(ErrUnmounted)
	}
	r.requests = nil
	r.effectErr = nil

	var firstErr error
	if root := r.arena.get(r.committedRoot); root != nil {
		for c := root.child; c != 0; c = r.arena.get(c).sibling {
			r.unmountEffects(c)
			if err := r.commitDeletion(c); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		r.arena.releaseTree(r.committedRoot)
	}
	r.committedRoot = 0
	r.unmounted = true
	r.metrics.setLive(r.arena.live)
	r.logger.Debug("reconciler unmounted")

	if firstErr != nil {
		return firstErr
	}
	return r.effectErr
}
