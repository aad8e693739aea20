// Package vfiber is an incremental virtual-tree reconciler.
//
// Components return description trees built with Build. A Reconciler diffs
// each new description against the committed work tree in small units that
// fit a time budget, and applies the collected changes to a Host in one
// commit.
//
//	func Counter(h vfiber.Hooks, props vfiber.Props) *vfiber.VNode {
//	    n, setN := vfiber.UseState(h, 0)
//	    return vfiber.Build("button", vfiber.Props{
//	        "onClick": func() { setN.Update(func(v int) int { return v + 1 }) },
//	    }, "Count: ", n)
//	}
//
//	r := vfiber.New(host)
//	r.Render(vfiber.Build(Counter, nil), container)
//	r.Flush(ctx)
//
// The element and attribute helpers live in pkg/vdom; scheduling options,
// the run loop and metrics live in pkg/fiber.
package vfiber

import (
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// Description nodes.
type (
	VNode     = vdom.VNode
	Props     = vdom.Props
	Component = vdom.Component
	Hooks     = vdom.Hooks
	Event     = vdom.Event
)

// Reconciler types.
type (
	Reconciler = fiber.Reconciler
	Host       = fiber.Host
	Handle     = fiber.Handle
	Option     = fiber.Option
	Deadline   = fiber.Deadline
)

// TextTag is the kind passed to Build for text nodes.
const TextTag = vdom.TextTag

// Build creates a description node. kind is a host tag, a component or
// TextTag.
func Build(kind any, props Props, children ...any) *VNode {
	return vdom.Build(kind, props, children...)
}

// Text creates a text description node holding value.
func Text(value any) *VNode {
	return vdom.Text(value)
}

// New creates a reconciler that commits to host.
func New(host Host, opts ...Option) *Reconciler {
	return fiber.New(host, opts...)
}

// UseState returns the current value of the next state cell of the
// rendering component and a setter that schedules a render of it.
func UseState[T any](h Hooks, initial T) (T, fiber.Setter[T]) {
	return fiber.UseState(h, initial)
}

// UseEffect registers fn to run after the commit. It re-runs when deps
// change, on every commit when deps is nil, and once for NoDeps.
func UseEffect(h Hooks, fn func() func(), deps []any) {
	fiber.UseEffect(h, fn, deps)
}

// NoDeps returns an empty dependency list: the effect runs on mount only.
func NoDeps() []any {
	return fiber.NoDeps()
}
