package vdom

import (
	"fmt"
	"reflect"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Text leaf
	KindComponent              // Function component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Reserved attribute keys.
const (
	// ChildrenKey carries a component's children inside its props. It is never
	// treated as an attribute.
	ChildrenKey = "children"

	// NodeValueKey is the sole attribute of a text node.
	NodeValueKey = "nodeValue"
)

// VNode is an immutable description of one node of the UI tree.
// Once returned by Build or a helper it must not be mutated.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Comp     Component // For KindComponent
	Props    Props     // Attributes and event handlers
	Children []*VNode  // Child nodes
}

// Props holds attributes and event handlers.
type Props map[string]any

// Get returns the value stored under key, or nil.
func (p Props) Get(key string) any {
	if p == nil {
		return nil
	}
	return p[key]
}

// String returns the string form of an attribute, or "" when it is absent.
func (p Props) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	return ValueString(v)
}

// Children returns the children passed to a component.
func (p Props) Children() []*VNode {
	children, _ := p[ChildrenKey].([]*VNode)
	return children
}

// clone returns a shallow copy of p (never nil).
func (p Props) clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// WithChildren returns a copy of p with the children key set.
func (p Props) WithChildren(children []*VNode) Props {
	out := p.clone()
	out[ChildrenKey] = children
	return out
}

// Text returns the content of a text node.
func (v *VNode) Text() string {
	if v == nil || v.Kind != KindText {
		return ""
	}
	return v.Props.String(NodeValueKey)
}

// Type returns the node's identity used for reconciliation.
func (v *VNode) Type() Type {
	return Type{Kind: v.Kind, Tag: v.Tag, Comp: v.Comp}
}

// IsInteractive returns true if this node binds at least one event handler.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventKey(key) {
			return true
		}
	}
	return false
}

// Type identifies what a node renders as. Two nodes at the same position are
// reconciled in place only when their types are Equal.
type Type struct {
	Kind VKind
	Tag  string
	Comp Component
}

// Equal reports whether t and o describe the same kind of node. Components
// are compared by function identity.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindElement:
		return t.Tag == o.Tag
	case KindComponent:
		return componentID(t.Comp) == componentID(o.Comp)
	default:
		return true
	}
}

// String returns a short label for logs.
func (t Type) String() string {
	switch t.Kind {
	case KindElement:
		return t.Tag
	case KindText:
		return "#text"
	case KindComponent:
		return fmt.Sprintf("component@%#x", componentID(t.Comp))
	default:
		return "unknown"
	}
}

func componentID(c Component) uintptr {
	if c == nil {
		return 0
	}
	return reflect.ValueOf(c).Pointer()
}

// Hooks is the handle a component uses to reach its per-node hook cells while
// it renders. The reconciler supplies the implementation; components normally
// use the typed wrappers in the fiber package instead of calling it directly.
type Hooks interface {
	// UseState returns the current value of the next state cell and a function
	// that queues a transform of that value.
	UseState(initial any) (value any, push func(func(any) any))

	// UseEffect registers the next effect cell. A nil deps slice re-runs the
	// effect after every commit; an empty one runs it once.
	UseEffect(fn EffectFunc, deps []any)
}

// EffectFunc is a side effect run after commit. It may return a cleanup.
type EffectFunc func() func()

// Component renders props into at most one child description.
type Component func(h Hooks, props Props) *VNode

// Handler wraps an event callback. Listeners are compared by *Handler
// identity, so a description node built once keeps the same listener.
type Handler struct {
	Fn any
}

// Invoke calls the wrapped callback with ev when it accepts an argument.
func (h *Handler) Invoke(ev Event) {
	if h == nil {
		return
	}
	switch fn := h.Fn.(type) {
	case func():
		fn()
	case func(Event):
		fn(ev)
	case func(string):
		fn(ev.Value)
	case func(any):
		fn(ev)
	}
}

// Event is the payload delivered to a Handler.
type Event struct {
	Type  string
	Value string
	Data  map[string]string
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}
