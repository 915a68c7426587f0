// Package postproc rewrites rendered HTML before it reaches the preview:
// table source ranges, heading anchors, local image embedding, and local
// link interception.
package postproc

import (
	"encoding/base64"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mdpreview/go-mdpreview/internal/fileutil"
	"github.com/mdpreview/go-mdpreview/internal/mdext"
)

// DefaultMaxImageSize caps embedded images at 10 MiB.
const DefaultMaxImageSize = 10 << 20

// Options controls the rewrite pass. TableRanges and Headings must be in
// document order; they are consumed positionally as matching elements are
// encountered.
type Options struct {
	// BaseDir resolves relative image paths. Empty disables embedding.
	BaseDir      string
	Headings     []mdext.Heading
	TableRanges  []mdext.TableRange
	EmbedImages  bool
	MaxImageSize int64
}

// Rewrite parses the HTML, applies all element handlers in document order,
// and renders it back. Surplus elements beyond the provided tables or
// headings are left unstamped rather than failing the render.
func Rewrite(htmlContent string, opts Options) (string, error) {
	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	if opts.MaxImageSize <= 0 {
		opts.MaxImageSize = DefaultMaxImageSize
	}
	s := &state{opts: opts}
	s.rewriteNode(doc)

	return renderHTML(doc, isFragment)
}

// state carries the positional cursors for tables and headings across the
// depth-first walk.
type state struct {
	opts       Options
	tableIdx   int
	headingIdx int
}

// rewriteNode traverses the DOM in document order and applies handlers.
func (s *state) rewriteNode(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "table":
			s.stampTable(n)
		case "h1", "h2", "h3", "h4", "h5", "h6":
			s.anchorHeading(n)
		case "img":
			s.embedImage(n)
		case "a":
			s.interceptLink(n)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.rewriteNode(c)
	}
}

// stampTable attaches the next table's source range.
func (s *state) stampTable(n *html.Node) {
	if s.tableIdx >= len(s.opts.TableRanges) {
		return
	}
	r := s.opts.TableRanges[s.tableIdx]
	s.tableIdx++
	setAttr(n, "data-source-line", strconv.Itoa(r.Start))
	setAttr(n, "data-source-line-end", strconv.Itoa(r.End))
}

// anchorHeading assigns the next heading's slug as the element id.
func (s *state) anchorHeading(n *html.Node) {
	if s.headingIdx >= len(s.opts.Headings) {
		return
	}
	h := s.opts.Headings[s.headingIdx]
	s.headingIdx++
	if h.ID != "" {
		setAttr(n, "id", h.ID)
	}
}

// embedImage inlines a local image as a base64 data URI, keeping the
// canonical source path in data-original-src so clients can resolve it later.
// Remote and data URIs pass through; unreadable or oversized files leave
// the tag unchanged.
func (s *state) embedImage(n *html.Node) {
	if !s.opts.EmbedImages || s.opts.BaseDir == "" {
		return
	}
	src, ok := getAttr(n, "src")
	if !ok || src == "" {
		return
	}
	if fileutil.IsURL(src) || strings.HasPrefix(src, "data:") {
		return
	}

	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.opts.BaseDir, src)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	if resolved, symErr := filepath.EvalSymlinks(abs); symErr == nil {
		abs = resolved
	}

	data, err := fileutil.ReadFileLimited(abs, s.opts.MaxImageSize)
	if err != nil {
		return
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	setAttr(n, "data-original-src", abs)
	setAttr(n, "src", "data:"+mimeForExtension(filepath.Ext(abs))+";base64,"+encoded)
}

// interceptLink converts a local file link into a span whose mousedown
// handler routes the click to the host application. Links to non-markdown
// files additionally carry md-link-invalid. Remote links and anchors pass
// through untouched, as do extensionless paths.
func (s *state) interceptLink(n *html.Node) {
	href, ok := getAttr(n, "href")
	if !ok || href == "" {
		return
	}
	if fileutil.IsURL(href) ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "data:") {
		return
	}
	ext := strings.TrimPrefix(filepath.Ext(href), ".")
	if ext == "" {
		return
	}

	class := "md-link"
	if ext != "md" && ext != "markdown" {
		class = "md-link md-link-invalid"
	}

	n.Data = "span"
	n.DataAtom = atom.Span
	removeAttr(n, "href")
	setAttr(n, "class", class)
	setAttr(n, "onmousedown", linkInterceptor(href))
}

// linkInterceptor builds the inline handler for an intercepted link. Left
// and middle clicks are claimed; right clicks keep the native menu.
func linkInterceptor(href string) string {
	escaped := strings.ReplaceAll(href, `'`, `\'`)
	return "if (event.button === 0 || event.button === 1) { " +
		"event.preventDefault(); " +
		"window.handleMarkdownLinkClick('" + escaped + "', event.button); }"
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.TrimSpace(content)

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype") ||
		strings.HasPrefix(strings.ToLower(trimmed), "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		// Render each child directly
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	// Full document: render normally
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, attr := range n.Attr {
		if attr.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Key != name {
			kept = append(kept, attr)
		}
	}
	n.Attr = kept
}
