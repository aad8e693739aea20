package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindComponent, "Component"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func counterComponent(h Hooks, props Props) *VNode { return Div() }
func otherComponent(h Hooks, props Props) *VNode   { return Span() }

func TestTypeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"same tag", Div(), Div(), true},
		{"different tag", Div(), Span(), false},
		{"text vs text", Text("a"), Text("b"), true},
		{"text vs element", Text("a"), Div(), false},
		{"same component", Build(counterComponent, nil), Build(counterComponent, nil), true},
		{"different component", Build(counterComponent, nil), Build(otherComponent, nil), false},
		{"component vs element", Build(counterComponent, nil), Div(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Type().Equal(tt.b.Type()); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVNodeIsInteractive(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want bool
	}{
		{"nil node", nil, false},
		{"text node", Text("hello"), false},
		{"element without handlers", Div(Class("test")), false},
		{"element with onclick", Button(OnClick(func() {})), true},
		{"element with oninput", Input(OnInput(func(string) {})), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsInteractive(); got != tt.want {
				t.Errorf("IsInteractive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandlerInvoke(t *testing.T) {
	var calls []string

	(&Handler{Fn: func() { calls = append(calls, "plain") }}).Invoke(Event{})
	(&Handler{Fn: func(ev Event) { calls = append(calls, ev.Type) }}).Invoke(Event{Type: "click"})
	(&Handler{Fn: func(v string) { calls = append(calls, v) }}).Invoke(Event{Value: "typed"})
	var nilHandler *Handler
	nilHandler.Invoke(Event{})

	want := []string{"plain", "click", "typed"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestPropsChildren(t *testing.T) {
	child := Span()
	p := Props{"a": 1}.WithChildren([]*VNode{child})

	if got := p.Children(); len(got) != 1 || got[0] != child {
		t.Errorf("Children() = %v, want [child]", got)
	}
	if p.String("a") != "1" {
		t.Errorf("String(a) = %q, want 1", p.String("a"))
	}
	if p.String("missing") != "" {
		t.Errorf("String(missing) = %q, want empty", p.String("missing"))
	}
}
