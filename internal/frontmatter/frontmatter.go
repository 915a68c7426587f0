// Package frontmatter strips a leading YAML metadata block from a markdown
// document and renders it as a collapsible HTML table.
package frontmatter

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/mdpreview/go-mdpreview/internal/yamlutil"
)

const delimiter = "---"

// Extract splits a leading YAML frontmatter block off the document.
//
// It returns the rendered HTML table, the remaining markdown content, and the
// number of source lines consumed by the block (delimiters plus trailing
// blank lines). When the document has no frontmatter, or the block is not
// valid YAML, the original text is returned unchanged with a zero line count.
// Heading extraction and HTML rendering both rely on that fallback being
// identical, otherwise anchor ids drift between the two passes.
func Extract(markdown string) (htmlTable, content string, lines int) {
	if !strings.HasPrefix(markdown, delimiter) {
		return "", markdown, 0
	}

	rest := markdown[len(delimiter):]
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return "", markdown, 0
	}

	block := strings.TrimSpace(rest[:end])
	afterClosing := rest[end+len(delimiter)+1:]
	body := strings.TrimLeftFunc(afterClosing, unicode.IsSpace)

	// Count lines consumed before the body starts.
	trimmed := len(afterClosing) - len(body)
	consumed := len(delimiter) + end + len(delimiter) + 1 + trimmed
	lines = strings.Count(markdown[:consumed], "\n")

	var value any
	if err := yamlutil.UnmarshalOrdered([]byte(block), &value); err != nil {
		return "", markdown, 0
	}

	return renderTable(value), body, lines
}

// renderTable renders the decoded frontmatter as a collapsible key/value
// table. Non-mapping top-level values produce no HTML.
func renderTable(value any) string {
	mapping, ok := value.(yamlutil.MapSlice)
	if !ok || len(mapping) == 0 {
		return ""
	}

	var rows strings.Builder
	for _, item := range mapping {
		fmt.Fprintf(&rows, "<tr><th>%s</th><td>%s</td></tr>\n",
			html.EscapeString(valueToString(item.Key)), renderValue(item.Value))
	}

	return fmt.Sprintf(`<details class="frontmatter">
<summary class="frontmatter-summary">Frontmatter</summary>
<table class="frontmatter-table">
<tbody>
%s</tbody>
</table>
</details>`, rows.String())
}

// valueToString flattens a YAML value into plain text, used for keys and
// sequence summaries.
func valueToString(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = valueToString(item)
		}
		return strings.Join(parts, ", ")
	case yamlutil.MapSlice:
		return "[object]"
	default:
		return fmt.Sprint(v)
	}
}

// renderValue renders a YAML value as HTML with type-specific markup.
func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return `<span class="yaml-null">null</span>`
	case bool:
		return fmt.Sprintf(`<span class="yaml-bool">%t</span>`, v)
	case string:
		return html.EscapeString(v)
	case []any:
		if len(v) == 0 {
			return `<span class="yaml-empty">[]</span>`
		}
		var b strings.Builder
		b.WriteString(`<ul class="yaml-list">`)
		for _, item := range v {
			b.WriteString("<li>")
			b.WriteString(renderValue(item))
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
		return b.String()
	case yamlutil.MapSlice:
		if len(v) == 0 {
			return `<span class="yaml-empty">{}</span>`
		}
		var b strings.Builder
		b.WriteString(`<table class="yaml-nested-table"><tbody>`)
		for _, item := range v {
			fmt.Fprintf(&b, "<tr><th>%s</th><td>%s</td></tr>",
				html.EscapeString(valueToString(item.Key)), renderValue(item.Value))
		}
		b.WriteString("</tbody></table>")
		return b.String()
	default:
		// Covers the numeric types the YAML decoder produces
		// (uint64, int64, float64).
		return fmt.Sprintf(`<span class="yaml-number">%v</span>`, v)
	}
}
