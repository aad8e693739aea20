package fiber

import "github.com/vango-dev/vfiber/pkg/vdom"

// reconcileChildren diffs elements against the previous generation's children
// of parent by position. Each step pairs the i-th element with the i-th old
// child:
//
//   - same type: a new Update fiber that reuses the old handle
//   - element without a match: a new Placement fiber
//   - old child without a match: the old fiber is tagged Deletion
//
// A kind change fires both the second and third outcome at the same position.
// Identity is positional, so an insertion in the middle of a list replaces
// every later sibling whose type no longer lines up.
func (r *Reconciler) reconcileChildren(parentID fiberID, elements []*vdom.VNode) {
	parent := r.arena.get(parentID)

	var old fiberID
	if alt := r.arena.get(parent.alternate); alt != nil {
		old = alt.child
	}

	parent.child = 0
	var prev fiberID
	for i := 0; i < len(elements) || old != 0; i++ {
		var element *vdom.VNode
		if i < len(elements) {
			element = elements[i]
		}
		oldFiber := r.arena.get(old)

		var produced fiberID
		switch {
		case element != nil && oldFiber != nil && element.Type().Equal(oldFiber.typ):
			id, f := r.arena.alloc()
			f.typ = element.Type()
			f.props = element.Props
			f.children = element.Children
			f.handle = oldFiber.handle
			f.parent = parentID
			f.alternate = old
			f.tag = Update
			produced = id
		case element != nil:
			id, f := r.arena.alloc()
			f.typ = element.Type()
			f.props = element.Props
			f.children = element.Children
			f.parent = parentID
			f.tag = Placement
			produced = id
		}

		if oldFiber != nil && (produced == 0 || r.arena.get(produced).alternate != old) {
			oldFiber.tag = Deletion
			r.deletions = append(r.deletions, old)
		}

		if oldFiber != nil {
			old = oldFiber.sibling
		}

		if produced != 0 {
			if prev == 0 {
				parent.child = produced
			} else {
				r.arena.get(prev).sibling = produced
			}
			prev = produced
		}
	}
}
