package render

// inlineElements stay on one line in pretty output.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "br": true, "button": true,
	"cite": true, "code": true, "em": true, "i": true, "kbd": true,
	"label": true, "mark": true, "q": true, "s": true, "samp": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true,
	"time": true, "u": true, "var": true,
	"h1": true, "h2": true, "h3": true, "li": true, "p": true, "option": true,
}

func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

// booleanAttrs are rendered as a bare name when true and omitted when false.
var booleanAttrs = map[string]bool{
	"async":          true,
	"autofocus":      true,
	"checked":        true,
	"controls":       true,
	"defer":          true,
	"disabled":       true,
	"formnovalidate": true,
	"hidden":         true,
	"multiple":       true,
	"novalidate":     true,
	"open":           true,
	"readonly":       true,
	"required":       true,
	"selected":       true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
