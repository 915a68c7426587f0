// Package mdpreview renders Markdown documents to preview HTML with
// editor synchronization metadata.
//
// # Quick Start
//
// Create a renderer and convert markdown:
//
//	r := mdpreview.New()
//	html, err := r.Render(content, "/path/to/doc.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Use RenderWithTOC to also receive the document's headings with their
// anchor slugs:
//
//	result, err := r.RenderWithTOC(content, "/path/to/doc.md")
//	for _, h := range result.Headings {
//	    fmt.Println(h.Level, h.Text, h.ID)
//	}
//
// # Rendering Pipeline
//
// The conversion process follows these stages:
//
//  1. Line-ending normalization
//  2. YAML frontmatter extraction (rendered as a collapsible summary table)
//  3. GitHub alert expansion (> [!NOTE] and friends)
//  4. Markdown to HTML via Goldmark (GFM, footnotes, math, syntax highlighting)
//  5. Source-line annotation (data-source-line attributes on block elements)
//  6. HTML post-processing (table ranges, heading anchors, image embedding,
//     local link interception)
//
// Every block element in the output carries a data-source-line attribute
// pointing at the 1-based line of the original document, including lines
// consumed by frontmatter and alert expansion. Editors use these attributes
// to keep the preview scroll position in sync.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r := mdpreview.New(
//	    mdpreview.WithFencedTags("mermaid", "math", "graphviz"),
//	    mdpreview.WithoutImageEmbedding(),
//	    mdpreview.WithMaxImageSize(2<<20),
//	)
//
// Fenced code blocks whose language matches a configured tag are not
// highlighted; they are emitted as <pre class="preprocessed-TAG"> elements
// carrying the raw fence content for a client-side renderer (mermaid
// diagrams, math typesetting).
//
// # Local Resources
//
// Relative image paths are resolved against the directory of the source
// file and inlined as base64 data URIs, so the preview works without a file
// server. Links to local markdown files are converted to click-intercepting
// spans that route navigation to the host application.
package mdpreview
