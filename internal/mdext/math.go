package mdext

import (
	"bytes"
	stdhtml "html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MathSpan is an inline $...$ or single-line $$...$$ expression. The segment
// covers the expression body without the dollar delimiters.
type MathSpan struct {
	ast.BaseInline
	Display bool
	Segment text.Segment
}

// KindMathSpan identifies MathSpan nodes.
var KindMathSpan = ast.NewNodeKind("MathSpan")

// Kind implements ast.Node.
func (n *MathSpan) Kind() ast.NodeKind { return KindMathSpan }

// Dump implements ast.Node.
func (n *MathSpan) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// MathBlock is a multi-line display expression fenced by $$ lines. Content
// lives in the block's line segments; the fence offsets drive source-line
// attribution.
type MathBlock struct {
	ast.BaseBlock
	openOffset  int
	closeOffset int // -1 while unterminated
}

// KindMathBlock identifies MathBlock nodes.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// IsRaw implements ast.Node. Content is raw TeX and must not be parsed as
// inline markdown.
func (n *MathBlock) IsRaw() bool { return true }

type mathSpanParser struct{}

func (p *mathSpanParser) Trigger() []byte { return []byte{'$'} }

func (p *mathSpanParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) == 0 || line[0] != '$' {
		return nil
	}
	opener := 1
	if len(line) > 1 && line[1] == '$' {
		opener = 2
	}
	rest := line[opener:]
	var closeIdx int
	if opener == 2 {
		closeIdx = bytes.Index(rest, []byte("$$"))
	} else {
		closeIdx = bytes.IndexByte(rest, '$')
	}
	if closeIdx <= 0 {
		return nil
	}
	body := rest[:closeIdx]
	if body[0] == ' ' || body[0] == '\t' || body[len(body)-1] == ' ' || body[len(body)-1] == '\t' {
		return nil
	}
	node := &MathSpan{
		Display: opener == 2,
		Segment: text.NewSegment(seg.Start+opener, seg.Start+opener+closeIdx),
	}
	block.Advance(opener + closeIdx + opener)
	return node
}

type mathBlockParser struct{}

func (p *mathBlockParser) Trigger() []byte { return []byte{'$'} }

func (p *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	if !isMathFence(line) {
		return nil, parser.NoChildren
	}
	node := &MathBlock{openOffset: seg.Start, closeOffset: -1}
	reader.Advance(seg.Len() - 1)
	return node, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, seg := reader.PeekLine()
	if isMathFence(line) {
		node.(*MathBlock).closeOffset = seg.Start
		reader.Advance(seg.Len() - 1)
		return parser.Close
	}
	node.Lines().Append(seg)
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *mathBlockParser) CanInterruptParagraph() bool { return false }

func (p *mathBlockParser) CanAcceptIndentedLine() bool { return false }

// isMathFence reports whether a line is exactly a $$ fence.
func isMathFence(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	return len(trimmed) == 2 && trimmed[0] == '$' && trimmed[1] == '$'
}

// MathRenderer renders math nodes as pre-classed containers for client-side
// typesetting. The TeX source is escaped into both the element body and
// data-original-content so the client can re-typeset without reparsing.
type MathRenderer struct{}

// NewMathRenderer returns a renderer for MathSpan and MathBlock nodes.
func NewMathRenderer() renderer.NodeRenderer { return &MathRenderer{} }

// RegisterFuncs implements renderer.NodeRenderer.
func (r *MathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathSpan, r.renderSpan)
	reg.Register(KindMathBlock, r.renderBlock)
}

func (r *MathRenderer) renderSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathSpan)
	escaped := stdhtml.EscapeString(string(n.Segment.Value(source)))
	if n.Display {
		_, _ = w.WriteString(`<div class="preprocessed-math-display"`)
		if n.Attributes() != nil {
			html.RenderAttributes(w, n, html.GlobalAttributeFilter)
		}
		_, _ = w.WriteString(` data-original-content="` + escaped + `">`)
		_, _ = w.WriteString(escaped)
		_, _ = w.WriteString("</div>")
	} else {
		_, _ = w.WriteString(`<span class="preprocessed-math-inline" data-original-content="` + escaped + `">`)
		_, _ = w.WriteString(escaped)
		_, _ = w.WriteString("</span>")
	}
	return ast.WalkContinue, nil
}

func (r *MathRenderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathBlock)
	var content []byte
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		content = append(content, seg.Value(source)...)
	}
	escaped := stdhtml.EscapeString(string(content))
	_, _ = w.WriteString(`<div class="preprocessed-math-display"`)
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.GlobalAttributeFilter)
	}
	_, _ = w.WriteString(` data-original-content="` + escaped + `">`)
	_, _ = w.WriteString(escaped)
	_, _ = w.WriteString("</div>\n")
	return ast.WalkContinue, nil
}

type mathExtension struct{}

// Math adds $...$ inline and $$ display math to a goldmark instance.
var Math goldmark.Extender = &mathExtension{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 450)),
		parser.WithInlineParsers(util.Prioritized(&mathSpanParser{}, 550)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(NewMathRenderer(), 500)),
	)
}
