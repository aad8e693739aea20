package demo

import (
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// Counter renders a count with increment and decrement buttons.
func Counter(h vdom.Hooks, props vdom.Props) *vdom.VNode {
	count, setCount := fiber.UseState(h, 0)

	inc := func() { setCount.Update(func(n int) int { return n + 1 }) }
	dec := func() { setCount.Update(func(n int) int { return n - 1 }) }

	return vdom.Div(vdom.Class("counter"),
		vdom.H1("Counter"),
		vdom.Button(vdom.Class("inc"), vdom.OnClick(inc), "+"),
		vdom.Span(vdom.Class("count"), vdom.AriaLive("polite"), count),
		vdom.Button(vdom.Class("dec"), vdom.OnClick(dec), vdom.Disabled(count <= 0), "-"),
	)
}
