// Package memhost is an in-memory host tree for the reconciler. It records
// every operation as a protocol.Mutation, which makes it the host used by
// tests, the CLI renderer and the mutation stream.
package memhost

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/vfiber/pkg/protocol"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// TextTag is the Tag of text nodes.
const TextTag = "#text"

// Node is one node of the host tree.
type Node struct {
	ID        uint64
	Tag       string
	Text      string
	Attrs     map[string]any
	Listeners map[string]*vdom.Handler
	Children  []*Node
	Parent    *Node
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == TextTag
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// SortedAttrs returns the attribute keys in order.
func (n *Node) SortedAttrs() []string {
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Host is an in-memory host. It is safe for concurrent use; the reconciler
// drives it from one goroutine while readers inspect or render the tree.
type Host struct {
	mu        sync.Mutex
	nextID    uint64
	root      *Node
	nodes     map[uint64]*Node
	log       []protocol.Mutation
	observers []func(protocol.Mutation)
	fail      map[protocol.Op]error
}

// New creates a host whose container is an element with the given tag.
func New(containerTag string) *Host {
	h := &Host{nodes: make(map[uint64]*Node)}
	h.root = h.newNode(containerTag)
	return h
}

func (h *Host) newNode(tag string) *Node {
	h.nextID++
	n := &Node{
		ID:        h.nextID,
		Tag:       tag,
		Attrs:     make(map[string]any),
		Listeners: make(map[string]*vdom.Handler),
	}
	h.nodes[n.ID] = n
	return n
}

// Container returns the container node to pass to Render.
func (h *Host) Container() *Node {
	return h.root
}

// Lock runs fn while holding the host lock, so fn sees a consistent tree.
func (h *Host) Lock(fn func(root *Node)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.root)
}

// Observe registers fn to receive every mutation as it is applied.
// fn runs with the host lock held and must not call back into the host.
func (h *Host) Observe(fn func(protocol.Mutation)) {
	h.mu.Lock()
	h.observers = append(h.observers, fn)
	h.mu.Unlock()
}

// FailOn makes every later operation of kind op fail with err. A nil err
// clears the failure. Creation of text nodes is controlled by OpCreateText.
func (h *Host) FailOn(op protocol.Op, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail == nil {
		h.fail = make(map[protocol.Op]error)
	}
	if err == nil {
		delete(h.fail, op)
		return
	}
	h.fail[op] = err
}

// Mutations returns a copy of the recorded mutations.
func (h *Host) Mutations() []protocol.Mutation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]protocol.Mutation(nil), h.log...)
}

// Drain returns the recorded mutations and clears the record.
func (h *Host) Drain() []protocol.Mutation {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.log
	h.log = nil
	return out
}

// Find returns the node with the given ID, or nil.
func (h *Host) Find(id uint64) *Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nodes[id]
}

func (h *Host) record(m protocol.Mutation) {
	h.log = append(h.log, m)
	for _, fn := range h.observers {
		fn(m)
	}
}

func (h *Host) failure(op protocol.Op) error {
	if err := h.fail[op]; err != nil {
		return fmt.Errorf("memhost: %s: %w", op, err)
	}
	return nil
}

func node(handle any) (*Node, error) {
	n, ok := handle.(*Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("memhost: handle %T is not a *memhost.Node", handle)
	}
	return n, nil
}

// CreateHandle creates a detached node.
func (h *Host) CreateHandle(t vdom.Type) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch t.Kind {
	case vdom.KindText:
		if err := h.failure(protocol.OpCreateText); err != nil {
			return nil, err
		}
		n := h.newNode(TextTag)
		h.record(protocol.Mutation{Op: protocol.OpCreateText, ID: n.ID})
		return n, nil
	case vdom.KindElement:
		if err := h.failure(protocol.OpCreate); err != nil {
			return nil, err
		}
		n := h.newNode(t.Tag)
		h.record(protocol.Mutation{Op: protocol.OpCreate, ID: n.ID, Tag: t.Tag})
		return n, nil
	default:
		return nil, fmt.Errorf("memhost: cannot create a host node for %s", t)
	}
}

// ApplyDelta applies an attribute delta. On a text node the nodeValue
// attribute is the text.
func (h *Host) ApplyDelta(handle any, d vdom.Delta) error {
	n, err := node(handle)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, l := range d.Detach {
		if err := h.failure(protocol.OpDetach); err != nil {
			return err
		}
		if n.Listeners[l.Event] == l.Handler {
			delete(n.Listeners, l.Event)
		}
		h.record(protocol.Mutation{Op: protocol.OpDetach, ID: n.ID, Key: l.Event})
	}
	for _, key := range d.Reset {
		if err := h.failure(protocol.OpResetAttr); err != nil {
			return err
		}
		if n.IsText() && key == vdom.NodeValueKey {
			n.Text = ""
		}
		delete(n.Attrs, key)
		h.record(protocol.Mutation{Op: protocol.OpResetAttr, ID: n.ID, Key: key})
	}
	for _, a := range d.Set {
		if err := h.failure(protocol.OpSetAttr); err != nil {
			return err
		}
		value := vdom.ValueString(a.Value)
		if n.IsText() && a.Key == vdom.NodeValueKey {
			n.Text = value
		} else {
			n.Attrs[a.Key] = a.Value
		}
		h.record(protocol.Mutation{Op: protocol.OpSetAttr, ID: n.ID, Key: a.Key, Value: value})
	}
	for _, l := range d.Attach {
		if err := h.failure(protocol.OpAttach); err != nil {
			return err
		}
		n.Listeners[l.Event] = l.Handler
		h.record(protocol.Mutation{Op: protocol.OpAttach, ID: n.ID, Key: l.Event})
	}
	return nil
}

// AppendHandle attaches child as the last child of parent.
func (h *Host) AppendHandle(parent, child any) error {
	return h.insert(protocol.OpAppend, parent, child, nil)
}

// InsertHandle attaches child under parent before an existing child.
func (h *Host) InsertHandle(parent, child, before any) error {
	return h.insert(protocol.OpInsert, parent, child, before)
}

func (h *Host) insert(op protocol.Op, parentHandle, childHandle, beforeHandle any) error {
	p, err := node(parentHandle)
	if err != nil {
		return err
	}
	c, err := node(childHandle)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure(op); err != nil {
		return err
	}
	if p.IsText() {
		return fmt.Errorf("memhost: text node %d cannot have children", p.ID)
	}

	m := protocol.Mutation{Op: op, ID: c.ID, Parent: p.ID}
	var before *Node
	if op == protocol.OpInsert {
		b, err := node(beforeHandle)
		if err != nil {
			return err
		}
		if b == c || p.indexOf(b) < 0 {
			return fmt.Errorf("memhost: node %d is not a child of %d", b.ID, p.ID)
		}
		before = b
		m.Before = b.ID
	}

	if c.Parent != nil {
		c.Parent.Children = removeChild(c.Parent.Children, c)
	}
	idx := len(p.Children)
	if before != nil {
		idx = p.indexOf(before)
	}

	p.Children = append(p.Children, nil)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = c
	c.Parent = p
	h.record(m)
	return nil
}

// RemoveHandle detaches child from parent. The detached subtree is
// forgotten by Find.
func (h *Host) RemoveHandle(parentHandle, childHandle any) error {
	p, err := node(parentHandle)
	if err != nil {
		return err
	}
	c, err := node(childHandle)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure(protocol.OpRemove); err != nil {
		return err
	}
	if c.Parent != p || p.indexOf(c) < 0 {
		return fmt.Errorf("memhost: node %d is not a child of %d", c.ID, p.ID)
	}
	p.Children = removeChild(p.Children, c)
	c.Parent = nil
	h.forget(c)
	h.record(protocol.Mutation{Op: protocol.OpRemove, ID: c.ID, Parent: p.ID})
	return nil
}

func (h *Host) forget(n *Node) {
	delete(h.nodes, n.ID)
	for _, c := range n.Children {
		h.forget(c)
	}
}

func removeChild(children []*Node, c *Node) []*Node {
	for i, n := range children {
		if n == c {
			return append(children[:i:i], children[i+1:]...)
		}
	}
	return children
}

// Dispatch invokes the listener bound for event on node id. The handler runs
// without the host lock held, so it may trigger renders.
func (h *Host) Dispatch(id uint64, event string, ev vdom.Event) error {
	h.mu.Lock()
	n := h.nodes[id]
	var handler *vdom.Handler
	if n != nil {
		handler = n.Listeners[strings.ToLower(event)]
	}
	h.mu.Unlock()

	if n == nil {
		return fmt.Errorf("memhost: no node %d", id)
	}
	if handler == nil {
		return fmt.Errorf("memhost: node %d has no %q listener", id, event)
	}
	if ev.Type == "" {
		ev.Type = strings.ToLower(event)
	}
	handler.Invoke(ev)
	return nil
}

// Walk visits the tree below the container in depth-first order.
func (h *Host) Walk(fn func(n *Node, depth int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, c := range h.root.Children {
		walk(c, 0)
	}
}

// FindByTag returns the first node below the container with the given tag.
func (h *Host) FindByTag(tag string) *Node {
	var found *Node
	h.Walk(func(n *Node, _ int) {
		if found == nil && n.Tag == tag {
			found = n
		}
	})
	return found
}

// String returns an indented outline of the tree below the container: one
// line per node, text nodes quoted.
func (h *Host) String() string {
	var b strings.Builder
	h.Walk(func(n *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if n.IsText() {
			fmt.Fprintf(&b, "%q\n", n.Text)
			return
		}
		b.WriteString(n.Tag)
		for _, k := range n.SortedAttrs() {
			fmt.Fprintf(&b, " %s=%q", k, vdom.ValueString(n.Attrs[k]))
		}
		b.WriteString("\n")
	})
	return b.String()
}
