package fiber

import "github.com/vango-dev/vfiber/pkg/vdom"

// fiberID indexes a work node in the arena. Zero means absent.
type fiberID int32

// EffectTag is the diff outcome assigned to a work node.
type EffectTag uint8

const (
	TagNone EffectTag = iota
	Placement
	Update
	Deletion
)

// String returns the tag name.
func (t EffectTag) String() string {
	switch t {
	case Placement:
		return "placement"
	case Update:
		return "update"
	case Deletion:
		return "deletion"
	default:
		return "none"
	}
}

// fiber is one work node of a generation.
type fiber struct {
	typ   vdom.Type
	props vdom.Props

	// children are the description children: static children for host
	// nodes, the children prop for components.
	children []*vdom.VNode

	// handle is shared with the alternate and never recreated on Update.
	handle Handle

	alternate fiberID
	parent    fiberID
	child     fiberID
	sibling   fiberID

	tag EffectTag

	// root marks the fiber that wraps the container.
	root bool

	// removed is set once the handle has been detached from its host parent.
	removed bool

	states    []*stateCell
	effects   []*effectCell
	hookKinds []hookKind
}

// arena stores the work nodes of every live generation. Released slots are
// recycled through the free list.
type arena struct {
	nodes []*fiber // nodes[0] is the absent sentinel
	free  []fiberID
	live  int
}

func newArena() *arena {
	return &arena{nodes: []*fiber{nil}}
}

func (a *arena) alloc() (fiberID, *fiber) {
	a.live++
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		f := &fiber{}
		a.nodes[id] = f
		return id, f
	}
	f := &fiber{}
	a.nodes = append(a.nodes, f)
	return fiberID(len(a.nodes) - 1), f
}

func (a *arena) get(id fiberID) *fiber {
	if id <= 0 || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

func (a *arena) release(id fiberID) {
	f := a.get(id)
	if f == nil {
		return
	}
	for _, c := range f.states {
		if c.owner == id {
			c.owner = 0
		}
	}
	a.nodes[id] = nil
	a.free = append(a.free, id)
	a.live--
}

// successor returns the next fiber after id in a pre-order walk of the
// subtree rooted at top: the first child, else the nearest sibling found
// while climbing. The walk never leaves top.
func (a *arena) successor(id, top fiberID) fiberID {
	f := a.get(id)
	if f.child != 0 {
		return f.child
	}
	for n := id; n != top && n != 0; {
		nf := a.get(n)
		if nf.sibling != 0 {
			return nf.sibling
		}
		n = nf.parent
	}
	return 0
}

// walk visits the subtree rooted at top in pre-order.
func (a *arena) walk(top fiberID, fn func(id fiberID, f *fiber) error) error {
	for id := top; id != 0; id = a.successor(id, top) {
		if err := fn(id, a.get(id)); err != nil {
			return err
		}
	}
	return nil
}

// releaseTree releases top and every fiber below it.
func (a *arena) releaseTree(top fiberID) {
	var ids []fiberID
	_ = a.walk(top, func(id fiberID, _ *fiber) error {
		ids = append(ids, id)
		return nil
	})
	for _, id := range ids {
		a.release(id)
	}
}

// hostParent returns the handle of the nearest ancestor that owns one.
func (a *arena) hostParent(id fiberID) Handle {
	for p := a.get(id).parent; p != 0; p = a.get(p).parent {
		if h := a.get(p).handle; h != nil {
			return h
		}
	}
	return nil
}
