package mdpreview

// DefaultFencedTags lists the fence languages handed to client-side
// renderers when no tags are configured.
var DefaultFencedTags = []string{"mermaid", "math"}

// HeadingInfo describes one document heading. ID is the GitHub-style anchor
// slug, unique within the document.
type HeadingInfo struct {
	Level int
	Text  string
	ID    string
}

// RenderResult is the output of RenderWithTOC.
type RenderResult struct {
	HTML     string
	Headings []HeadingInfo
}
