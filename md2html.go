package mdpreview

import (
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/mdpreview/go-mdpreview/internal/mdext"
)

// newGoldmark builds a goldmark instance for the rendering pipeline.
//
// withMath is off for the alert-body instance: alert bodies already went
// through one rewriting level and only get plain GFM treatment.
//
// WithUnsafe is required: alert expansion splices HTML back into the
// markdown before parsing, and that HTML must survive rendering.
func newGoldmark(withMath bool) goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
				chromahtml.PreventSurroundingPre(true),
			),
			highlighting.WithWrapperRenderer(mdext.WrapCodeBlock),
		),
	}
	if withMath {
		exts = append(exts, mdext.Math)
	}

	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(mdext.NewPreprocessedRenderer(), 300),
				util.Prioritized(mdext.NewCodeBlockRenderer(), 300),
			),
		),
	)
}
