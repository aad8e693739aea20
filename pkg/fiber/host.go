package fiber

import "github.com/vango-dev/vfiber/pkg/vdom"

// Handle is an opaque reference to a host node.
type Handle = any

// Host is the adapter the reconciler drives. Every method may fail; a failure
// abandons the generation in flight.
type Host interface {
	// CreateHandle creates a detached host node of the given element or text
	// type. Attributes are applied afterwards through ApplyDelta.
	CreateHandle(t vdom.Type) (Handle, error)

	// ApplyDelta applies an attribute delta in order: detach listeners, reset
	// attributes, set attributes, attach listeners.
	ApplyDelta(h Handle, d vdom.Delta) error

	// AppendHandle attaches child as the last child of parent.
	AppendHandle(parent, child Handle) error

	// RemoveHandle detaches child from parent.
	RemoveHandle(parent, child Handle) error
}

// Inserter is implemented by hosts that can insert before an existing child.
// When available, placements keep sibling order even when a new node lands
// before nodes that were already placed.
type Inserter interface {
	InsertHandle(parent, child, before Handle) error
}
