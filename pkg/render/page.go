package render

import (
	"bufio"
	"fmt"
	"io"
	"net/http"

	"github.com/vango-dev/vfiber/pkg/host/memhost"
)

// RootID is the id of the element that wraps the rendered container.
const RootID = "vf-root"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the node whose children form the page content, usually the
	// host container.
	Body *memhost.Node

	// Title is the page title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Styles contains inline CSS.
	Styles []string

	// Script is inline JavaScript placed at the end of the body.
	Script string
}

// RenderPage renders a complete HTML document. When w is an http.Flusher the
// head is flushed before the body is rendered.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(bw, "<html lang=\"%s\">\n", escapeAttr(lang))
	r.renderHead(bw, page)
	if err := bw.Flush(); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	fmt.Fprintf(bw, "<body>\n<div id=\"%s\">", RootID)
	if r.config.Pretty {
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := r.RenderChildren(w, page.Body); err != nil {
		return err
	}
	bw.WriteString("</div>\n")
	if page.Script != "" {
		bw.WriteString("<script>\n")
		bw.WriteString(page.Script)
		bw.WriteString("\n</script>\n")
	}
	bw.WriteString("</body>\n</html>\n")
	return bw.Flush()
}

func (r *Renderer) renderHead(w *bufio.Writer, page PageData) {
	w.WriteString("<head>\n")
	w.WriteString("<meta charset=\"utf-8\">\n")
	w.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	if page.Title != "" {
		fmt.Fprintf(w, "<title>%s</title>\n", escapeHTML(page.Title))
	}
	for _, href := range page.StyleSheets {
		fmt.Fprintf(w, "<link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href))
	}
	for _, css := range page.Styles {
		fmt.Fprintf(w, "<style>%s</style>\n", css)
	}
	w.WriteString("</head>\n")
}
