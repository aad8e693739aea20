package vdom

import "strings"

func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Class sets the class attribute. Element factories join repeated Class
// attributes with a space.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// ClassIf adds class when cond holds.
func ClassIf(cond bool, class string) Attr { return AttrIf(cond, Class(class)) }

// AttrIf returns a when cond holds and the empty attribute otherwise.
// Element factories skip empty attributes.
func AttrIf(cond bool, a Attr) Attr {
	if !cond {
		return Attr{}
	}
	return a
}

// Data sets a data-* attribute: Data("row", "3") is data-row="3".
func Data(key, value string) Attr { return attr("data-"+key, value) }

func ID(id string) Attr            { return attr("id", id) }
func StyleAttr(style string) Attr  { return attr("style", style) }
func Href(url string) Attr         { return attr("href", url) }
func Name(name string) Attr        { return attr("name", name) }
func Value(value any) Attr         { return attr("value", value) }
func Type_(t string) Attr          { return attr("type", t) }
func Placeholder(text string) Attr { return attr("placeholder", text) }
func For(id string) Attr           { return attr("for", id) }
func AriaLabel(label string) Attr  { return attr("aria-label", label) }
func AriaLive(mode string) Attr    { return attr("aria-live", mode) }

// Boolean attributes keep their bool value; renderers write true as a bare
// attribute and omit false.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }
func Checked(checked bool) Attr   { return attr("checked", checked) }
