package vdom

// If returns node when condition holds and nil otherwise. Build drops nil
// children, so toggling a node shifts the positions of its later siblings.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is If with a lazily built node.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps items to nodes and drops nil results. Children are matched by
// position, so reordering items updates every moved node in place.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if n := fn(item, i); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Repeat builds n nodes with fn. It returns nil for n <= 0.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Range(idx, func(i, _ int) *VNode { return fn(i) })
}
