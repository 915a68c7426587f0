package mdext

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Heading is one document heading with its GitHub-style anchor slug.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// headingParser is a minimal GFM instance used only to locate headings.
// Attribute parsing matches the render instance so `# Title {#id}` syntax
// never leaks into heading text. Stateless after construction and safe for
// concurrent parses.
var headingParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAttribute()),
)

// ExtractHeadings parses the document and returns its headings in order,
// each with a slug unique within the document.
func ExtractHeadings(source []byte) []Heading {
	doc := headingParser.Parser().Parse(text.NewReader(source))
	seen := make(map[string]int)
	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		txt := headingText(h, source)
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  strings.TrimSpace(txt),
			ID:    uniqueSlug(Slugify(txt), seen),
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// headingText flattens a heading's inline content to plain text, joining
// line breaks with single spaces.
func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// Slugify converts heading text to a GitHub-style anchor: lowercase ASCII
// alphanumerics with hyphen separators, everything else dropped.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			b.WriteByte('-')
		}
	}
	parts := strings.Split(b.String(), "-")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "-")
}

// uniqueSlug disambiguates repeated slugs by appending -1, -2, ... to the
// second and later occurrences.
func uniqueSlug(slug string, seen map[string]int) string {
	n, dup := seen[slug]
	seen[slug] = n + 1
	if !dup {
		return slug
	}
	return slug + "-" + strconv.Itoa(n)
}
