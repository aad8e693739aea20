package fiber

import (
	"fmt"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// hookKind identifies a hook call for order validation.
type hookKind uint8

const (
	hookState hookKind = iota + 1
	hookEffect
)

func (k hookKind) String() string {
	switch k {
	case hookState:
		return "UseState"
	case hookEffect:
		return "UseEffect"
	default:
		return "Unknown"
	}
}

// stateCell is the storage behind one UseState call site. The same cell is
// carried from generation to generation by call order.
type stateCell struct {
	value any
	queue []func(any) any

	// owner is the committed fiber holding the cell, or zero once the cell
	// is unmounted or before its first commit.
	owner fiberID
}

// effectCell is the storage behind one UseEffect call site in one generation.
type effectCell struct {
	fn      vdom.EffectFunc
	deps    []any
	hasDeps bool
	cleanup func()
}

// changedFrom reports whether e must run again given its previous cell.
// Effects without a dependency list always re-run. Dependencies compare
// element-wise by value.
func (e *effectCell) changedFrom(prev *effectCell) bool {
	if prev == nil || !e.hasDeps || !prev.hasDeps {
		return true
	}
	if len(e.deps) != len(prev.deps) {
		return true
	}
	for i := range e.deps {
		if !vdom.PropsEqual(e.deps[i], prev.deps[i]) {
			return true
		}
	}
	return false
}

// scope is handed to a component while it renders and resolves its hook
// calls against the rendering fiber.
type scope struct {
	r         *Reconciler
	id        fiberID
	stateIdx  int
	effectIdx int
	hookIdx   int
}

var _ vdom.Hooks = (*scope)(nil)

// UseState returns the value of the next state cell after draining its queue.
func (s *scope) UseState(initial any) (any, func(func(any) any)) {
	s.track(hookState)

	f := s.r.arena.get(s.id)
	idx := s.stateIdx
	s.stateIdx++

	var cell *stateCell
	if alt := s.r.arena.get(f.alternate); alt != nil && idx < len(alt.states) {
		cell = alt.states[idx]
	}
	if cell == nil {
		cell = &stateCell{value: initial}
	}

	for _, fn := range cell.queue {
		cell.value = fn(cell.value)
	}
	cell.queue = nil
	f.states = append(f.states, cell)

	r := s.r
	push := func(fn func(any) any) {
		if fn == nil {
			return
		}
		cell.queue = append(cell.queue, fn)
		r.requestUpdate(cell)
	}
	return cell.value, push
}

// UseEffect records the next effect cell. It runs during commit.
func (s *scope) UseEffect(fn vdom.EffectFunc, deps []any) {
	s.track(hookEffect)

	f := s.r.arena.get(s.id)
	s.effectIdx++

	cell := &effectCell{fn: fn, hasDeps: deps != nil}
	if deps != nil {
		cell.deps = append(make([]any, 0, len(deps)), deps...)
	}
	f.effects = append(f.effects, cell)
}

// track records hook order on the fiber and, when the hook-order check is
// enabled, compares it with the previous render of the same node.
func (s *scope) track(kind hookKind) {
	f := s.r.arena.get(s.id)
	idx := s.hookIdx
	s.hookIdx++
	f.hookKinds = append(f.hookKinds, kind)

	if !s.r.opts.hookOrderCheck {
		return
	}
	alt := s.r.arena.get(f.alternate)
	if alt == nil {
		return
	}
	if idx >= len(alt.hookKinds) {
		panic(hookOrderError(fmt.Sprintf("extra %s hook at index %d", kind, idx)))
	}
	if want := alt.hookKinds[idx]; want != kind {
		panic(hookOrderError(fmt.Sprintf("expected %s at index %d, got %s", want, idx, kind)))
	}
}

// finish validates the hook count once the component returns.
func (s *scope) finish() error {
	if !s.r.opts.hookOrderCheck {
		return nil
	}
	alt := s.r.arena.get(s.r.arena.get(s.id).alternate)
	if alt != nil && s.hookIdx < len(alt.hookKinds) {
		return hookOrderError(fmt.Sprintf("expected %d hooks, got %d", len(alt.hookKinds), s.hookIdx))
	}
	return nil
}

func hookOrderError(detail string) *errors.Error {
	return errors.New(errors.CodeHookOrder).WithDetail(detail)
}

// Setter updates a state cell created by UseState.
type Setter[T any] struct {
	push func(func(any) any)
}

// Set replaces the value.
func (s Setter[T]) Set(v T) {
	if s.push == nil {
		return
	}
	s.push(func(any) any { return v })
}

// Update queues fn to transform the value. Queued transforms apply in order.
func (s Setter[T]) Update(fn func(T) T) {
	if s.push == nil || fn == nil {
		return
	}
	s.push(func(old any) any {
		v, _ := old.(T)
		return fn(v)
	})
}

// UseState returns the current value of the next state cell of the rendering
// component and a setter for it. Hooks must be called in the same order on
// every render of a component.
func UseState[T any](h vdom.Hooks, initial T) (T, Setter[T]) {
	v, push := h.UseState(initial)
	val, _ := v.(T)
	return val, Setter[T]{push: push}
}

// UseEffect schedules fn to run after the commit that mounts the component and
// after every commit where deps changed. A nil deps re-runs fn after every
// commit; NoDeps() runs it once. The cleanup fn returns runs before the next
// run and when the component is removed.
func UseEffect(h vdom.Hooks, fn func() func(), deps []any) {
	h.UseEffect(fn, deps)
}

// NoDeps is the empty dependency list of a mount-only effect.
func NoDeps() []any {
	return []any{}
}
