package demo

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

type todoItem struct {
	Text string
	Done bool
}

// Todo renders an editable todo list. Items are reconciled by position, so
// clearing finished items re-creates the ones that move.
func Todo(h vdom.Hooks, props vdom.Props) *vdom.VNode {
	items, setItems := fiber.UseState(h, []todoItem(nil))
	draft, setDraft := fiber.UseState(h, "")

	add := func() {
		setItems.Update(func(list []todoItem) []todoItem {
			text := strings.TrimSpace(draft)
			if text == "" {
				text = fmt.Sprintf("Item %d", len(list)+1)
			}
			return append(list[:len(list):len(list)], todoItem{Text: text})
		})
		setDraft.Set("")
	}
	toggle := func(i int) func() {
		return func() {
			setItems.Update(func(list []todoItem) []todoItem {
				out := append([]todoItem(nil), list...)
				if i < len(out) {
					out[i].Done = !out[i].Done
				}
				return out
			})
		}
	}
	clearDone := func() {
		setItems.Update(func(list []todoItem) []todoItem {
			var out []todoItem
			for _, it := range list {
				if !it.Done {
					out = append(out, it)
				}
			}
			return out
		})
	}

	done := 0
	for _, it := range items {
		if it.Done {
			done++
		}
	}

	return vdom.Section(vdom.Class("todo"),
		vdom.H2("Todo"),
		vdom.Button(vdom.Class("add"), vdom.OnClick(add), "Add"),
		vdom.Input(vdom.Type_("text"), vdom.Value(draft), vdom.Placeholder("What needs doing?"),
			vdom.OnInput(func(v string) { setDraft.Set(v) })),
		vdom.Ul(vdom.Range(items, func(it todoItem, i int) *vdom.VNode {
			return vdom.Li(vdom.ClassIf(it.Done, "done"), vdom.OnClick(toggle(i)), it.Text)
		})),
		vdom.P(vdom.Class("summary"), done, " of ", len(items), " done"),
		vdom.If(done > 0, vdom.Button(vdom.Class("clear"), vdom.OnClick(clearDone), "Clear done")),
	)
}
