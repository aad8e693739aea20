package fiber

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// performUnitOfWork processes one fiber and returns the next one to process,
// or zero when the generation is fully diffed.
func (r *Reconciler) performUnitOfWork(id fiberID) (fiberID, error) {
	f := r.arena.get(id)

	switch f.typ.Kind {
	case vdom.KindComponent:
		child, err := r.renderComponent(id)
		if err != nil {
			return 0, err
		}
		var elements []*vdom.VNode
		if child != nil {
			elements = []*vdom.VNode{child}
		}
		r.reconcileChildren(id, elements)
	default:
		if f.handle == nil {
			h, err := r.createHandle(f.typ, f.props)
			if err != nil {
				return 0, err
			}
			f.handle = h
		}
		r.reconcileChildren(id, f.children)
	}

	return r.arena.successor(id, r.wipRoot), nil
}

// renderComponent calls the component of fiber id with a fresh hook scope.
// A panic in the component is recovered into an error.
func (r *Reconciler) renderComponent(id fiberID) (child *vdom.VNode, err error) {
	f := r.arena.get(id)
	f.states = f.states[:0]
	f.effects = f.effects[:0]
	f.hookKinds = f.hookKinds[:0]

	s := &scope{r: r, id: id}
	props := f.props.WithChildren(f.children)

	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(*errors.Error); ok && e.Code == errors.CodeHookOrder {
				err = e
				return
			}
			err = errors.New(errors.CodeComponentPanic).
				WithMessage("Component %s panicked: %v", f.typ, p).
				WithDetail(string(debug.Stack())).
				Wrap(panicError(p))
		}
	}()

	child = f.typ.Comp(s, props)
	if err := s.finish(); err != nil {
		return nil, err
	}
	return child, nil
}

// createHandle creates a host node and applies its initial attributes.
func (r *Reconciler) createHandle(t vdom.Type, props vdom.Props) (Handle, error) {
	h, err := r.host.CreateHandle(t)
	if err != nil {
		return nil, hostError("create "+t.String(), err)
	}
	r.stats.Creates++
	if d := vdom.DiffProps(nil, props); !d.Empty() {
		if err := r.host.ApplyDelta(h, d); err != nil {
			return nil, hostError("initialize "+t.String(), err)
		}
	}
	return h, nil
}

func hostError(op string, err error) error {
	return errors.New(errors.CodeHostFailure).
		WithDetail("operation: " + op).
		Wrap(err)
}

func panicError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return stderrors.New(fmt.Sprint(p))
}
