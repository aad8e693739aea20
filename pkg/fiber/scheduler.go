package fiber

import (
	"context"

	"github.com/vango-dev/vfiber/internal/errors"
	"go.opentelemetry.io/otel/attribute"
)

// seedNext starts the oldest queued request that still has work.
func (r *Reconciler) seedNext() {
	for r.wipRoot == 0 && len(r.requests) > 0 {
		req := r.requests[0]
		r.requests = r.requests[1:]
		if req.desc != nil {
			r.seedRoot(req.desc)
			return
		}
		r.seedCell(req.cell)
	}
}

// RunSlice processes units of work until the generation is finished or the
// deadline reports less than the minimum budget. The deadline is polled after
// every unit, so a slice always makes progress and always stops between
// units. A finished generation is committed before RunSlice returns.
//
// Any error abandons the generation in flight, except a panic in an effect:
// that generation is still committed and the panic is returned afterwards.
func (r *Reconciler) RunSlice(ctx context.Context, deadline Deadline) (SliceResult, error) {
	if r.unmounted {
		return SliceResult{Idle: true}, ErrUnmounted
	}
	if deadline == nil {
		deadline = Unlimited()
	}
	if r.wipRoot == 0 {
		r.seedNext()
	}
	if r.wipRoot == 0 {
		return SliceResult{Idle: true}, nil
	}

	ctx, span := r.startSpan(ctx, "fiber.RunSlice")
	defer span.End()

	var res SliceResult
	for r.next != 0 {
		next, err := r.performUnitOfWork(r.next)
		res.Units++
		r.stats.Units++
		if err != nil {
			r.metrics.recordUnits(res.Units)
			r.metrics.recordSlice("error")
			r.abandon(err)
			endSpan(span, err)
			return res, err
		}
		r.next = next
		if r.next != 0 && (deadline() < r.opts.minBudget || ctx.Err() != nil) {
			res.Yielded = true
			break
		}
	}
	r.metrics.recordUnits(res.Units)
	span.SetAttributes(attribute.Int("vfiber.units", res.Units))

	if res.Yielded {
		r.metrics.recordSlice("yielded")
		r.logger.Debug("slice yielded", "units", res.Units)
		res.Idle = false
		return res, nil
	}

	if err := r.commit(ctx); err != nil {
		r.metrics.recordSlice("error")
		r.abandon(err)
		endSpan(span, err)
		return res, err
	}
	res.Committed = true
	res.Idle = !r.Pending()
	r.metrics.recordSlice("committed")

	if err := r.effectErr; err != nil {
		r.effectErr = nil
		endSpan(span, err)
		return res, err
	}
	return res, nil
}

// Flush runs slices with an unlimited deadline until no work is pending.
// With a flush limit configured, it fails with an update storm error once
// that many commits happened and work is still pending.
func (r *Reconciler) Flush(ctx context.Context) error {
	commits := 0
	for r.Pending() {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := r.RunSlice(ctx, Unlimited())
		if err != nil {
			return err
		}
		if res.Idle {
			return nil
		}
		if res.Committed {
			commits++
			if r.opts.flushLimit > 0 && commits >= r.opts.flushLimit && r.Pending() {
				r.requests = nil
				return errors.New(errors.CodeUpdateStorm).
					WithMessage("Flush stopped after %d commits with work still pending", commits)
			}
		}
	}
	return nil
}

// Pending reports whether a generation is in flight or queued.
func (r *Reconciler) Pending() bool {
	return !r.unmounted && (r.wipRoot != 0 || len(r.requests) > 0)
}
