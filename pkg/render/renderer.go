package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/vfiber/pkg/host/memhost"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// Attributes that mark interactive elements.
const (
	IDAttr     = "data-vf-id"
	EventsAttr = "data-vf-on"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output with one block element per line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// OmitIDs drops the data-vf-id and data-vf-on markers. Snapshots that
	// are never made interactive use it.
	OmitIDs bool
}

// Renderer serializes memhost trees to HTML. A Renderer holds no state
// between calls and may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders node and its subtree.
func (r *Renderer) RenderToString(node *memhost.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams node and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *memhost.Node) error {
	bw := bufio.NewWriter(w)
	if err := r.renderNode(bw, node, 0, r.config.Pretty); err != nil {
		return err
	}
	return bw.Flush()
}

// RenderChildren streams the children of node without node itself.
func (r *Renderer) RenderChildren(w io.Writer, node *memhost.Node) error {
	if node == nil {
		return nil
	}
	bw := bufio.NewWriter(w)
	for _, c := range node.Children {
		if err := r.renderNode(bw, c, 0, r.config.Pretty); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// renderNode writes n. A node rendered on its own line is indented and
// followed by a newline; inline nodes are written as is.
func (r *Renderer) renderNode(w *bufio.Writer, n *memhost.Node, depth int, line bool) error {
	if n == nil {
		return nil
	}
	if n.Tag == "" {
		return fmt.Errorf("render: node %d has no tag", n.ID)
	}
	if line {
		r.writeIndent(w, depth)
	}
	if n.IsText() {
		w.WriteString(escapeHTML(n.Text))
	} else if err := r.renderElement(w, n, depth); err != nil {
		return err
	}
	if line {
		return w.WriteByte('\n')
	}
	return nil
}

func (r *Renderer) renderElement(w *bufio.Writer, n *memhost.Node, depth int) error {
	w.WriteByte('<')
	w.WriteString(n.Tag)
	r.renderAttributes(w, n)
	w.WriteByte('>')

	if vdom.IsVoidElement(n.Tag) {
		return nil
	}

	block := r.config.Pretty && len(n.Children) > 0 && !isInlineElement(n.Tag)
	if block {
		w.WriteByte('\n')
	}
	for _, c := range n.Children {
		if err := r.renderNode(w, c, depth+1, block); err != nil {
			return err
		}
	}
	if block {
		r.writeIndent(w, depth)
	}

	w.WriteString("</")
	w.WriteString(n.Tag)
	_, err := w.WriteString(">")
	return err
}

// renderAttributes writes the attributes in key order followed by the
// interaction markers.
func (r *Renderer) renderAttributes(w *bufio.Writer, n *memhost.Node) {
	for _, key := range n.SortedAttrs() {
		value := n.Attrs[key]
		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					w.WriteByte(' ')
					w.WriteString(key)
				}
				continue
			}
		}
		if value == nil {
			continue
		}
		fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(vdom.ValueString(value)))
	}

	if r.config.OmitIDs || len(n.Listeners) == 0 {
		return
	}
	events := make([]string, 0, len(n.Listeners))
	for name := range n.Listeners {
		events = append(events, name)
	}
	sort.Strings(events)
	fmt.Fprintf(w, ` %s="%s" %s="%s"`,
		IDAttr, strconv.FormatUint(n.ID, 10),
		EventsAttr, escapeAttr(strings.Join(events, " ")))
}

func (r *Renderer) writeIndent(w *bufio.Writer, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString(r.config.Indent)
	}
}
