package mdext

import (
	stdhtml "html"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// CodeBlockRenderer renders indented code blocks with their source-line
// attributes. Fenced blocks are handled by the highlighting extension and
// WrapCodeBlock; indented blocks fall through to the default renderer, which
// drops node attributes on <pre>.
type CodeBlockRenderer struct{}

// NewCodeBlockRenderer returns a renderer for indented code blocks.
func NewCodeBlockRenderer() renderer.NodeRenderer { return &CodeBlockRenderer{} }

// RegisterFuncs implements renderer.NodeRenderer.
func (r *CodeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindCodeBlock, r.render)
}

func (r *CodeBlockRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<pre")
	if node.Attributes() != nil {
		html.RenderAttributes(w, node, html.GlobalAttributeFilter)
	}
	_, _ = w.WriteString("><code>")
	l := node.Lines().Len()
	for i := 0; i < l; i++ {
		line := node.Lines().At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	return ast.WalkContinue, nil
}

// WrapCodeBlock is the wrapper renderer handed to the highlighting extension.
// It emits the <pre>/<code> shell around chroma's output, carrying the
// source-line attributes recorded on the AST node and a language- class for
// clients that key on it.
func WrapCodeBlock(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	_, _ = w.WriteString("<pre")
	writeContextAttr(w, c, attrSourceLine)
	writeContextAttr(w, c, attrSourceLineStart)
	_, _ = w.WriteString("><code")
	if lang, ok := c.Language(); ok {
		_, _ = w.WriteString(` class="language-` + stdhtml.EscapeString(string(lang)) + `"`)
	}
	_, _ = w.WriteString(">")
}

// writeContextAttr copies one attribute from the code block's AST node, where
// the annotation pass put it, onto the wrapper tag.
func writeContextAttr(w util.BufWriter, c highlighting.CodeBlockContext, name string) {
	attrs := c.Attributes()
	if attrs == nil {
		return
	}
	value, ok := attrs.GetString(name)
	if !ok {
		return
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return
	}
	_, _ = w.WriteString(` ` + name + `="` + stdhtml.EscapeString(s) + `"`)
}
