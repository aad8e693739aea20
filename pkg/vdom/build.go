package vdom

import (
	"fmt"
	"strings"
)

// TextTag passed as the kind to Build creates a text node.
const TextTag = "#text"

// Build normalizes a node description into a VNode.
//
// kind is a host tag name, TextTag, a Component, or a function with the
// Component signature. Primitive children (strings, booleans and numbers)
// become text nodes carrying the value as their nodeValue; *VNode children
// pass through unchanged, []*VNode children are flattened and nil children are
// dropped. Build panics on any other kind or child type.
func Build(kind any, props Props, children ...any) *VNode {
	node := &VNode{Props: normalizeProps(props)}

	switch k := kind.(type) {
	case string:
		if k == TextTag {
			node.Kind = KindText
			if _, ok := node.Props[NodeValueKey]; !ok {
				node.Props[NodeValueKey] = ""
			}
			node.Children = []*VNode{}
			return node
		}
		node.Kind = KindElement
		node.Tag = k
	case Component:
		node.Kind = KindComponent
		node.Comp = k
	case func(Hooks, Props) *VNode:
		node.Kind = KindComponent
		node.Comp = k
	default:
		panic(fmt.Sprintf("vdom: unsupported node kind %T", kind))
	}

	node.Children = make([]*VNode, 0, len(children))
	for _, child := range children {
		node.Children = appendChild(node.Children, child)
	}
	return node
}

// Text creates a text node whose content is value.
func Text(value any) *VNode {
	return &VNode{
		Kind:     KindText,
		Props:    Props{NodeValueKey: value},
		Children: []*VNode{},
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// IsPrimitive reports whether v is rendered as a text node when used as a child.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func appendChild(dst []*VNode, child any) []*VNode {
	switch v := child.(type) {
	case nil:
		return dst
	case *VNode:
		if v == nil {
			return dst
		}
		return append(dst, v)
	case []*VNode:
		for _, c := range v {
			if c != nil {
				dst = append(dst, c)
			}
		}
		return dst
	case []any:
		for _, c := range v {
			dst = appendChild(dst, c)
		}
		return dst
	case Component:
		return append(dst, Build(v, nil))
	}
	if IsPrimitive(child) {
		return append(dst, Text(child))
	}
	panic(fmt.Sprintf("vdom: unsupported child type %T", child))
}

// normalizeProps copies props, drops the reserved children key and wraps
// event callbacks in *Handler.
func normalizeProps(props Props) Props {
	out := make(Props, len(props))
	for key, value := range props {
		if key == ChildrenKey {
			continue
		}
		if IsEventKey(key) {
			out[key] = toHandler(value)
			continue
		}
		out[key] = value
	}
	return out
}

func toHandler(v any) any {
	switch h := v.(type) {
	case nil:
		return nil
	case *Handler:
		return h
	default:
		return &Handler{Fn: v}
	}
}

// IsEventKey returns true if the key is an event handler (starts with "on").
// Case-insensitive to catch onclick, ONCLICK, onClick, OnLoad, etc.
func IsEventKey(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventName returns the event an event key binds: "onClick" -> "click".
func EventName(key string) string {
	return strings.ToLower(key[2:])
}
