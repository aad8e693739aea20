// Package render serializes a memhost tree to HTML.
//
// The output is what a browser would show for the host tree: elements with
// their attributes in sorted order, escaped text, void elements without a
// closing tag and boolean attributes without a value. Listeners are not
// serialized. Instead an element with listeners carries a data-vf-id
// attribute holding its node ID and a data-vf-on attribute listing its
// events, which is enough for a remote viewer to post events back.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(host.Container())
//
// RenderChildren serializes only the content of a node, which is the usual
// way to render a container:
//
//	err := renderer.RenderChildren(w, host.Container())
//
// # Full Page Rendering
//
//	err := renderer.RenderPage(w, render.PageData{
//	    Title:  "Counter",
//	    Body:   host.Container(),
//	    Script: clientJS,
//	})
//
// The renderer reads the tree without locking it. Hold the host's lock
// (memhost.Host.Lock) while rendering a tree that a reconciler may mutate.
package render
