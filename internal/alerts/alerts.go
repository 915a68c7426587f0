// Package alerts rewrites GitHub-style block-quote callouts
// (> [!NOTE] and friends) into styled HTML containers.
//
// The rewriter works on raw markdown lines, before parsing. Each alert is
// replaced by a container div, a title line, and the alert body rendered to
// HTML by a caller-supplied renderer. Because the expansion changes the line
// count, Rewrite also returns a line-origin table mapping every output line
// back to the source line it came from; downstream source-line annotation
// depends on it.
package alerts

import (
	"fmt"
	"strings"
	"unicode"
)

// LineFunc maps a byte offset in an alert body to a 1-based original source
// line number.
type LineFunc func(offset int) int

// BodyRenderer renders alert-body markdown to HTML. The line function gives
// renderers access to the body's origin mapping so nested blocks can carry
// correct source-line annotations. One nesting level only: the body renderer
// must not run alert rewriting again.
type BodyRenderer func(body []byte, line LineFunc) string

// alertTypes lists the five markers GitHub recognizes, in match order.
var alertTypes = [...]struct {
	name  string
	class string
}{
	{"NOTE", "note"},
	{"TIP", "tip"},
	{"IMPORTANT", "important"},
	{"WARNING", "warning"},
	{"CAUTION", "caution"},
}

// iconPlaceholder returns the icon span for an alert type. The actual SVG is
// injected client-side from the data-alert-type attribute.
func iconPlaceholder(class string) string {
	return fmt.Sprintf(`<span class="alert-icon" data-alert-type="%s"></span>`, class)
}

// parseAlertStart reports whether a line opens an alert, returning the alert
// name, its CSS class, and any content following the marker.
func parseAlertStart(line string) (name, class, rest string, ok bool) {
	for _, at := range alertTypes {
		marker := "> [!" + at.name + "]"
		if strings.HasPrefix(line, marker) {
			return at.name, at.class, line[len(marker):], true
		}
	}
	return "", "", "", false
}

// Rewrite expands alert blocks in markdown and returns the rewritten text
// plus a line-origin table: origins[i] is the 0-based source line that
// produced line i of the rewritten text. Lines outside alerts map 1:1; every
// line an alert contributes maps to the alert's opening line.
//
// frontmatterLines is added to the source-line annotations baked into alert
// bodies, so the numbers refer to the document before frontmatter removal.
func Rewrite(markdown string, frontmatterLines int, render BodyRenderer) (string, []int) {
	lines := splitLines(markdown)
	var out []string
	var origins []int

	i := 0
	for i < len(lines) {
		name, class, rest, ok := parseAlertStart(lines[i])
		if !ok {
			origins = append(origins, i)
			out = append(out, lines[i])
			i++
			continue
		}

		block, next := expandAlert(lines, i, name, class, rest, frontmatterLines, render)
		for _, htmlLine := range block {
			// Rendered body HTML can span several lines; account for each
			// one so the origin table stays aligned with the joined output.
			n := strings.Count(htmlLine, "\n") + 1
			for range n {
				origins = append(origins, i)
			}
		}
		out = append(out, block...)
		i = next
	}

	return strings.Join(out, "\n"), origins
}

// expandAlert converts one alert block into HTML lines and returns them with
// the index of the first line after the block.
func expandAlert(lines []string, start int, name, class, firstRest string, frontmatterLines int, render BodyRenderer) ([]string, int) {
	htmlLines := []string{
		fmt.Sprintf(`<div class="markdown-alert markdown-alert-%s" data-source-line="%d" dir="auto">`,
			class, start+1+frontmatterLines),
		fmt.Sprintf(`<p class="markdown-alert-title" dir="auto">%s%s</p>`,
			iconPlaceholder(class), name),
	}

	// Collect the quoted body, remembering each line's source index.
	var body []string
	var bodyOrigins []int
	if strings.TrimSpace(firstRest) != "" {
		body = append(body, strings.TrimSpace(firstRest))
		bodyOrigins = append(bodyOrigins, start)
	}

	i := start + 1
	for i < len(lines) && strings.HasPrefix(lines[i], ">") {
		content := strings.TrimPrefix(lines[i], ">")
		body = append(body, strings.TrimLeftFunc(content, unicode.IsSpace))
		bodyOrigins = append(bodyOrigins, i)
		i++
	}

	if len(body) > 0 && render != nil {
		bodyMarkdown := strings.Join(body, "\n")
		line := func(offset int) int {
			bodyLine := lineOfOffset(bodyMarkdown, offset) - 1
			origin := bodyLine
			if len(bodyOrigins) > 0 {
				if bodyLine < len(bodyOrigins) {
					origin = bodyOrigins[bodyLine]
				} else {
					origin = bodyOrigins[len(bodyOrigins)-1]
				}
			}
			return origin + 1 + frontmatterLines
		}
		htmlLines = append(htmlLines, render([]byte(bodyMarkdown), line))
	}

	htmlLines = append(htmlLines, "</div>")
	return htmlLines, i
}

// splitLines splits on newlines without a phantom trailing line for text
// ending in "\n".
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// lineOfOffset converts a byte offset to a 1-based line number, clamping
// offsets past the end of text.
func lineOfOffset(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	return strings.Count(s[:offset], "\n") + 1
}
