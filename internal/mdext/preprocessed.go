package mdext

import (
	stdhtml "html"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// PreprocessedBlock replaces a fenced code block whose language tag is handed
// off to a client-side renderer (mermaid, math, and similar). The raw fence
// content is preserved verbatim for the client.
type PreprocessedBlock struct {
	ast.BaseBlock
	Tag     string
	Content []byte
}

// KindPreprocessedBlock identifies PreprocessedBlock nodes.
var KindPreprocessedBlock = ast.NewNodeKind("PreprocessedBlock")

// Kind implements ast.Node.
func (n *PreprocessedBlock) Kind() ast.NodeKind { return KindPreprocessedBlock }

// Dump implements ast.Node.
func (n *PreprocessedBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Tag": n.Tag}, nil)
}

// ExtractFencedBlocks replaces fenced code blocks carrying one of the given
// language tags with PreprocessedBlock nodes, stamped with the fence-to-fence
// source range. Matching nodes are collected first so the replacement never
// disturbs the walk.
func ExtractFencedBlocks(doc ast.Node, source []byte, line LineMapper, tags []string) {
	if len(tags) == 0 {
		return
	}
	var matches []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := string(fenced.Language(source))
		for _, tag := range tags {
			if lang == tag {
				matches = append(matches, fenced)
				break
			}
		}
		return ast.WalkContinue, nil
	})

	for _, fenced := range matches {
		parent := fenced.Parent()
		if parent == nil {
			continue
		}
		block := &PreprocessedBlock{
			Tag:     string(fenced.Language(source)),
			Content: fenceContent(fenced, source),
		}
		start, end := fenceRange(fenced, line)
		setLineAttr(block, attrSourceLine, start)
		setLineAttr(block, attrSourceLineEnd, end)
		parent.ReplaceChild(parent, fenced, block)
	}
}

func fenceContent(n *ast.FencedCodeBlock, source []byte) []byte {
	var content []byte
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		content = append(content, seg.Value(source)...)
	}
	return content
}

// fenceRange returns the source lines of the opening and closing fences.
func fenceRange(n *ast.FencedCodeBlock, line LineMapper) (start, end int) {
	switch {
	case n.Info != nil:
		start = line(n.Info.Segment.Start)
	case n.Lines().Len() > 0:
		start = line(n.Lines().At(0).Start) - 1
	}
	if l := n.Lines(); l.Len() > 0 {
		end = line(l.At(l.Len()-1).Stop-1) + 1
	} else {
		end = start + 1
	}
	return start, end
}

// PreprocessedRenderer renders PreprocessedBlock nodes.
type PreprocessedRenderer struct{}

// NewPreprocessedRenderer returns a renderer for PreprocessedBlock nodes.
func NewPreprocessedRenderer() renderer.NodeRenderer { return &PreprocessedRenderer{} }

// RegisterFuncs implements renderer.NodeRenderer.
func (r *PreprocessedRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindPreprocessedBlock, r.render)
}

func (r *PreprocessedRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*PreprocessedBlock)
	_, _ = w.WriteString(`<pre class="preprocessed-` + n.Tag + `"`)
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.GlobalAttributeFilter)
	}
	escaped := stdhtml.EscapeString(string(n.Content))
	_, _ = w.WriteString(` data-original-content="` + escaped + `">`)
	_, _ = w.WriteString(escaped)
	_, _ = w.WriteString("</pre>\n")
	return ast.WalkContinue, nil
}
