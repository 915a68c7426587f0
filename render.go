package mdpreview

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"github.com/mdpreview/go-mdpreview/internal/alerts"
	"github.com/mdpreview/go-mdpreview/internal/frontmatter"
	"github.com/mdpreview/go-mdpreview/internal/mdext"
	"github.com/mdpreview/go-mdpreview/internal/postproc"
)

// Renderer converts markdown documents to preview HTML. It is stateless
// across calls and safe for concurrent use.
type Renderer struct {
	cfg  rendererConfig
	md   goldmark.Markdown
	body goldmark.Markdown
}

type rendererConfig struct {
	fencedTags   []string
	embedImages  bool
	maxImageSize int64
}

// New creates a Renderer with default configuration.
// Use options to customize behavior (e.g., WithFencedTags).
func New(opts ...Option) *Renderer {
	r := &Renderer{
		cfg: rendererConfig{
			fencedTags:   DefaultFencedTags,
			embedImages:  true,
			maxImageSize: postproc.DefaultMaxImageSize,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	r.md = newGoldmark(true)
	r.body = newGoldmark(false)

	return r
}

// Render converts markdown to preview HTML. basePath is the path of the
// source file; its directory anchors relative images and links. Empty input
// renders to an empty string.
func (r *Renderer) Render(markdown, basePath string) (string, error) {
	result, err := r.RenderWithTOC(markdown, basePath)
	return result.HTML, err
}

// RenderWithTOC converts markdown to preview HTML and returns the document's
// headings alongside, each with its anchor slug.
func (r *Renderer) RenderWithTOC(markdown, basePath string) (RenderResult, error) {
	normalized := normalizeLineEndings(markdown)

	fmHTML, content, fmLines := frontmatter.Extract(normalized)

	rewritten, origins := alerts.Rewrite(content, fmLines, r.renderAlertBody)
	source := []byte(rewritten)
	mapper := mdext.NewLineMapper(source, origins, fmLines)

	headings := mdext.ExtractHeadings(source)

	doc := r.md.Parser().Parse(text.NewReader(source))
	mdext.ExtractFencedBlocks(doc, source, mapper, r.cfg.fencedTags)
	mdext.AnnotateSourceLines(doc, source, mapper)
	tables := mdext.ExtractTableRanges(doc, mapper)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return RenderResult{}, fmt.Errorf("%w: %v", ErrRenderHTML, err)
	}

	baseDir := ""
	if basePath != "" {
		baseDir = filepath.Dir(basePath)
	}
	out, err := postproc.Rewrite(buf.String(), postproc.Options{
		BaseDir:      baseDir,
		Headings:     headings,
		TableRanges:  tables,
		EmbedImages:  r.cfg.embedImages,
		MaxImageSize: r.cfg.maxImageSize,
	})
	if err != nil {
		return RenderResult{}, fmt.Errorf("%w: %v", ErrPostProcess, err)
	}

	if fmHTML != "" {
		out = fmHTML + "\n" + out
	}

	return RenderResult{HTML: out, Headings: toHeadingInfo(headings)}, nil
}

// renderAlertBody renders an alert body through the GFM-only instance,
// carrying the body's line-origin mapping into the annotations. Falls back
// to an escaped paragraph if rendering fails.
func (r *Renderer) renderAlertBody(body []byte, line alerts.LineFunc) string {
	doc := r.body.Parser().Parse(text.NewReader(body))
	mdext.AnnotateSourceLines(doc, body, mdext.LineMapper(line))

	var buf bytes.Buffer
	if err := r.body.Renderer().Render(&buf, body, doc); err != nil {
		return "<p>" + stdhtml.EscapeString(string(body)) + "</p>"
	}
	return strings.TrimRight(buf.String(), "\n")
}

func toHeadingInfo(headings []mdext.Heading) []HeadingInfo {
	if len(headings) == 0 {
		return nil
	}
	infos := make([]HeadingInfo, len(headings))
	for i, h := range headings {
		infos[i] = HeadingInfo{Level: h.Level, Text: h.Text, ID: h.ID}
	}
	return infos
}

// Render converts markdown using a default Renderer. For repeated
// conversions, create a Renderer once and reuse it.
func Render(markdown, basePath string) (string, error) {
	return New().Render(markdown, basePath)
}

// RenderWithTOC converts markdown using a default Renderer, returning the
// headings alongside the HTML.
func RenderWithTOC(markdown, basePath string) (RenderResult, error) {
	return New().RenderWithTOC(markdown, basePath)
}
