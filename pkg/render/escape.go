package render

import "strings"

// textEscapes are the replacements for HTML text content.
var textEscapes = map[rune]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#39;",
}

// attrEscapes extend textEscapes with the whitespace that could break
// attribute parsing.
var attrEscapes = map[rune]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#39;",
	'\n': "&#10;",
	'\r': "&#13;",
	'\t': "&#9;",
}

func escape(s string, table map[rune]string) string {
	if !strings.ContainsAny(s, "&<>\"'\n\r\t") {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s) + 8)
	for _, r := range s {
		if rep, ok := table[r]; ok {
			buf.WriteString(rep)
			continue
		}
		buf.WriteRune(r)
	}
	return buf.String()
}

// escapeHTML escapes text for inclusion in HTML content.
func escapeHTML(s string) string {
	return escape(s, textEscapes)
}

// escapeAttr escapes text for inclusion in a double-quoted attribute value.
func escapeAttr(s string) string {
	return escape(s, attrEscapes)
}
