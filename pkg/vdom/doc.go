// Package vdom describes UI trees for the reconciler.
//
// A VNode is an immutable description of one node: a host element, a text
// leaf, or a function component. Descriptions are produced by Build or by the
// element factories and are never mutated afterwards; the reconciler keeps its
// own mutable work tree (see package fiber) and only reads them.
//
// # Building
//
//	vdom.Build("button", vdom.Props{"onClick": inc}, "Count: ", count)
//
// is equivalent to
//
//	vdom.Button(vdom.OnClick(inc), "Count: ", count)
//
// Primitive children become text nodes whose nodeValue attribute holds the
// original value.
//
// # Attributes
//
// Keys that start with "on" are event bindings, compared by *Handler identity.
// Every other key except "children" is a plain attribute compared by value.
// DiffProps turns two prop maps into the Delta a host applies.
//
// # Components
//
// A Component receives a Hooks handle and its props (children under the
// "children" key) and returns a single description, or nil.
package vdom
