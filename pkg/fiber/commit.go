package fiber

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/vdom"
	"go.opentelemetry.io/otel/attribute"
)

// commit applies the finished generation to the host and runs its effects.
// Host failures abort the commit before the generation is promoted. Panics in
// effects are recovered; the commit completes and the first panic is kept in
// r.effectErr.
func (r *Reconciler) commit(ctx context.Context) error {
	start := time.Now()
	_, span := r.startSpan(ctx, "fiber.commit")
	defer span.End()

	// Removals first, so replaced nodes leave before their successors land.
	for _, id := range r.deletions {
		r.unmountEffects(id)
		if err := r.commitDeletion(id); err != nil {
			endSpan(span, err)
			return err
		}
	}
	r.stats.Deletions = len(r.deletions)

	err := r.arena.walk(r.wipRoot, func(id fiberID, f *fiber) error {
		switch f.tag {
		case Placement:
			r.stats.Placements++
			if f.handle != nil {
				return r.commitPlacement(id)
			}
		case Update:
			r.stats.Updates++
			if f.handle != nil {
				alt := r.arena.get(f.alternate)
				if d := vdom.DiffProps(alt.props, f.props); !d.Empty() {
					r.stats.Patched++
					r.stats.HostOps++
					if err := r.host.ApplyDelta(f.handle, d); err != nil {
						return hostError("update "+f.typ.String(), err)
					}
				}
			}
		case Deletion:
			return r.commitDeletion(id)
		}
		return nil
	})
	if err != nil {
		endSpan(span, err)
		return err
	}

	r.commitEffects()

	oldTop := r.promote()
	if oldTop != 0 {
		r.arena.releaseTree(oldTop)
	}

	r.stats.Duration = time.Since(start)
	r.last = r.stats
	r.metrics.recordCommit(r.stats)
	r.metrics.setLive(r.arena.live)
	span.SetAttributes(
		attribute.Int("vfiber.placements", r.stats.Placements),
		attribute.Int("vfiber.updates", r.stats.Updates),
		attribute.Int("vfiber.deletions", r.stats.Deletions),
		attribute.Int("vfiber.host_ops", r.stats.HostOps),
	)
	r.logger.Debug("generation committed",
		"root", r.stats.Root,
		"units", r.stats.Units,
		"placements", r.stats.Placements,
		"updates", r.stats.Updates,
		"deletions", r.stats.Deletions,
		"effects", r.stats.EffectsRun,
		"duration", r.stats.Duration,
	)

	r.wipRoot = 0
	r.next = 0
	r.deletions = r.deletions[:0]
	return nil
}

// commitPlacement attaches a new handle under its host parent. Hosts that
// implement Inserter get the handle before the next already placed sibling.
func (r *Reconciler) commitPlacement(id fiberID) error {
	f := r.arena.get(id)
	parent := r.arena.hostParent(id)
	if parent == nil {
		return nil
	}
	r.stats.HostOps++
	if ins, ok := r.host.(Inserter); ok {
		if before := r.hostSibling(id); before != nil {
			if err := ins.InsertHandle(parent, f.handle, before); err != nil {
				return hostError("insert "+f.typ.String(), err)
			}
			return nil
		}
	}
	if err := r.host.AppendHandle(parent, f.handle); err != nil {
		return hostError("append "+f.typ.String(), err)
	}
	return nil
}

// hostSibling finds the handle of the first following node that is already
// attached under the same host parent.
func (r *Reconciler) hostSibling(id fiberID) Handle {
	for n := id; n != 0; {
		f := r.arena.get(n)
		sibling := f.sibling
		if n == r.wipRoot {
			// The seed is not linked yet; its alternate still holds the place.
			if o := r.arena.get(f.alternate); o != nil {
				sibling = o.sibling
			}
		}
		for s := sibling; s != 0; s = r.arena.get(s).sibling {
			if h := r.placedHandle(s); h != nil {
				return h
			}
		}
		p := r.arena.get(f.parent)
		if p == nil || p.handle != nil {
			return nil
		}
		n = f.parent
	}
	return nil
}

func (r *Reconciler) placedHandle(id fiberID) Handle {
	f := r.arena.get(id)
	if f.tag == Placement {
		return nil
	}
	if f.handle != nil {
		return f.handle
	}
	for c := f.child; c != 0; c = r.arena.get(c).sibling {
		if h := r.placedHandle(c); h != nil {
			return h
		}
	}
	return nil
}

// commitDeletion removes the host handles of a subtree. A fiber without a
// handle of its own delegates to its children. Each handle is removed once.
func (r *Reconciler) commitDeletion(id fiberID) error {
	f := r.arena.get(id)
	if f.handle != nil {
		if f.removed {
			return nil
		}
		parent := r.arena.hostParent(id)
		if parent == nil {
			return nil
		}
		r.stats.HostOps++
		if err := r.host.RemoveHandle(parent, f.handle); err != nil {
			return hostError("remove "+f.typ.String(), err)
		}
		f.removed = true
		return nil
	}
	for c := f.child; c != 0; c = r.arena.get(c).sibling {
		if err := r.commitDeletion(c); err != nil {
			return err
		}
	}
	return nil
}

// unmountEffects runs every cleanup owned by a subtree that is about to be
// removed and detaches its state cells.
func (r *Reconciler) unmountEffects(top fiberID) {
	_ = r.arena.walk(top, func(id fiberID, f *fiber) error {
		for _, cell := range f.effects {
			if cell.cleanup != nil {
				cleanup := cell.cleanup
				cell.cleanup = nil
				r.runEffect("cleanup", cleanup)
			}
		}
		for _, cell := range f.states {
			cell.owner = 0
		}
		return nil
	})
}

// commitEffects runs the two effect passes over the new generation. Every
// cleanup of the generation runs before any effect of it.
func (r *Reconciler) commitEffects() {
	_ = r.arena.walk(r.wipRoot, func(id fiberID, f *fiber) error {
		alt := r.arena.get(f.alternate)
		if alt == nil {
			return nil
		}
		for i, prev := range alt.effects {
			if prev.cleanup == nil {
				continue
			}
			if i < len(f.effects) && !f.effects[i].changedFrom(prev) {
				continue
			}
			cleanup := prev.cleanup
			prev.cleanup = nil
			r.runEffect("cleanup", cleanup)
		}
		return nil
	})

	_ = r.arena.walk(r.wipRoot, func(id fiberID, f *fiber) error {
		alt := r.arena.get(f.alternate)
		for i, cell := range f.effects {
			var prev *effectCell
			if alt != nil && i < len(alt.effects) {
				prev = alt.effects[i]
			}
			if !cell.changedFrom(prev) {
				cell.cleanup = prev.cleanup
				continue
			}
			fn := cell.fn
			if fn == nil {
				continue
			}
			r.runEffect("effect", func() { cell.cleanup = fn() })
		}
		return nil
	})
}

// runEffect calls fn, converting a panic into the commit's effect error.
func (r *Reconciler) runEffect(phase string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("effect panic", "phase", phase, "panic", p)
			if r.effectErr == nil {
				r.effectErr = errors.New(errors.CodeEffectPanic).
					WithMessage("%s panicked: %v", phase, p).
					WithDetail(string(debug.Stack())).
					Wrap(panicError(p))
			}
		}
	}()
	if phase == "cleanup" {
		r.stats.Cleanups++
	} else {
		r.stats.EffectsRun++
	}
	r.metrics.recordEffect(phase)
	fn()
}

// promote makes the finished generation the committed one. A generation
// seeded below the root is spliced into the committed tree in place of its
// alternate. It returns the superseded subtree.
func (r *Reconciler) promote() fiberID {
	top := r.wipRoot
	f := r.arena.get(top)
	old := f.alternate

	if f.root {
		r.committedRoot = top
	} else if o := r.arena.get(old); o != nil {
		f.sibling = o.sibling
		parent := r.arena.get(o.parent)
		if parent.child == old {
			parent.child = top
		} else {
			for s := parent.child; s != 0; s = r.arena.get(s).sibling {
				sf := r.arena.get(s)
				if sf.sibling == old {
					sf.sibling = top
					break
				}
			}
		}
		// Detach the old subtree so releasing it cannot reach live nodes.
		o.sibling = 0
	}

	_ = r.arena.walk(top, func(id fiberID, n *fiber) error {
		n.tag = TagNone
		n.alternate = 0
		for _, cell := range n.states {
			cell.owner = id
		}
		return nil
	})
	return old
}

// abandon discards the generation in flight. The committed tree is left as
// it was; host operations already applied are not rolled back.
func (r *Reconciler) abandon(cause error) {
	if r.wipRoot != 0 {
		r.arena.releaseTree(r.wipRoot)
	}
	for _, id := range r.deletions {
		if f := r.arena.get(id); f != nil {
			f.tag = TagNone
		}
	}
	r.logger.Warn("generation abandoned", "error", cause, "units", r.stats.Units)
	r.wipRoot = 0
	r.next = 0
	r.deletions = r.deletions[:0]
	r.effectErr = nil
	r.metrics.setLive(r.arena.live)
}

func (s CommitStats) String() string {
	return fmt.Sprintf("units=%d placements=%d updates=%d patched=%d deletions=%d effects=%d cleanups=%d",
		s.Units, s.Placements, s.Updates, s.Patched, s.Deletions, s.EffectsRun, s.Cleanups)
}
