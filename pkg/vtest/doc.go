// Package vtest provides testing helpers for components.
//
// A Harness mounts a description into an in-memory host, flushes every
// update synchronously and renders the host tree to HTML for assertions.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, vdom.Build(Counter, nil))
//	    h.Click("button", "inc", 0)
//	    vtest.ExpectContains(t, h, `<span class="count">1</span>`)
//	}
//
// # Finding Nodes
//
// Find, Click and Fire address nodes by tag, optional class and their
// position among the matches in document order. Click and Fire only count
// nodes that listen for the event, so
//
//	h.Click("li", "", 2)
//
// clicks the third clickable list item.
//
// # Render Assertions
//
// Assertions render the host tree without node ids:
//
//	vtest.ExpectElement(t, h, "ul")
//	vtest.ExpectAttribute(t, h, "class", "done")
//	vtest.ExpectNotContains(t, h, "Error")
package vtest
