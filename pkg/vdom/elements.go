package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement builds an element from the variadic arguments accepted by the
// element factories: nil, Attr, []Attr, EventHandler, Props, children and
// primitives. Attributes and children are routed through Build so the result is
// identical to calling Build directly.
func createElement(tag string, args []any) *VNode {
	props := make(Props)
	children := make([]any, 0, len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Allows conditional attributes
		case Attr:
			setAttr(props, v)
		case []Attr:
			for _, a := range v {
				setAttr(props, a)
			}
		case EventHandler:
			props[v.Event] = v.Handler
		case Props:
			for k, val := range v {
				props[k] = val
			}
		default:
			children = append(children, v)
		}
	}

	return Build(tag, props, children...)
}

// setAttr stores a in props. Repeated class attributes accumulate.
func setAttr(props Props, a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "class" {
		prev, _ := props["class"].(string)
		next, _ := a.Value.(string)
		switch {
		case prev == "":
			props["class"] = a.Value
		case next != "":
			props["class"] = prev + " " + next
		}
		return
	}
	props[a.Key] = a.Value
}

// El creates an element with an arbitrary tag.
func El(tag string, args ...any) *VNode { return createElement(tag, args) }

// Sectioning

func Main(args ...any) *VNode    { return createElement("main", args) }
func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }

// Text content

func Div(args ...any) *VNode  { return createElement("div", args) }
func P(args ...any) *VNode    { return createElement("p", args) }
func Span(args ...any) *VNode { return createElement("span", args) }
func Pre(args ...any) *VNode  { return createElement("pre", args) }
func Ul(args ...any) *VNode   { return createElement("ul", args) }
func Ol(args ...any) *VNode   { return createElement("ol", args) }
func Li(args ...any) *VNode   { return createElement("li", args) }
func Hr(args ...any) *VNode   { return createElement("hr", args) }
func A(args ...any) *VNode    { return createElement("a", args) }
func B(args ...any) *VNode    { return createElement("b", args) }
func Em(args ...any) *VNode   { return createElement("em", args) }
func Code(args ...any) *VNode { return createElement("code", args) }
func Br(args ...any) *VNode   { return createElement("br", args) }

// Forms

func Form(args ...any) *VNode     { return createElement("form", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
