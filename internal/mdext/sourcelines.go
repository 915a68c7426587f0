// Package mdext holds the goldmark extensions and AST passes behind the
// renderer: math parsing, fenced-block extraction, table range capture,
// heading/slug extraction, and the source-line annotation pass that maps
// rendered elements back to the lines that produced them.
package mdext

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// Attribute names consumed by client-side editor/preview synchronization.
const (
	attrSourceLine      = "data-source-line"
	attrSourceLineEnd   = "data-source-line-end"
	attrSourceLineStart = "data-source-line-start"
)

// LineMapper maps a byte offset in the parsed text to a 1-based line number
// in the original document.
type LineMapper func(offset int) int

// OffsetToLine converts a byte offset to a 1-based line number, clamping
// out-of-range offsets.
func OffsetToLine(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	if offset < 0 {
		offset = 0
	}
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// NewLineMapper composes the two-level line mapping into a single function:
// byte offset in the rewritten text -> line-origin table -> frontmatter
// shift. Building it once per render keeps the heading pass and the
// annotation pass from diverging.
//
// origins[i] is the 0-based original line for line i of processed text.
// Lookups past the end of the table saturate to its last entry.
func NewLineMapper(processed []byte, origins []int, frontmatterLines int) LineMapper {
	return func(offset int) int {
		processedLine := OffsetToLine(processed, offset) - 1
		origin := processedLine
		if len(origins) > 0 {
			if processedLine < len(origins) {
				origin = origins[processedLine]
			} else {
				origin = origins[len(origins)-1]
			}
		}
		return origin + 1 + frontmatterLines
	}
}

// AnnotateSourceLines walks the document and records source-line attributes
// on block-level nodes. The default HTML renderer emits data-* attributes for
// every block kind, so annotated nodes need no custom rendering except code
// blocks (handled by the renderers in this package).
//
// Tables are deliberately left untouched: their ranges are captured by
// ExtractTableRanges and stamped onto the final <table> tags during HTML
// post-processing, which keeps the column-alignment styles the table
// extension renders natively.
func AnnotateSourceLines(doc ast.Node, source []byte, line LineMapper) {
	// cursor tracks the furthest offset seen, anchoring the text scan that
	// locates thematic breaks (they carry no segments in the AST).
	cursor := 0

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if n.Type() == ast.TypeBlock {
			if l := n.Lines(); l != nil && l.Len() > 0 {
				if stop := l.At(l.Len() - 1).Stop; stop > cursor {
					cursor = stop
				}
			}
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.Blockquote, *ast.List, *ast.ListItem:
			if off, ok := minSegmentStart(n); ok {
				setLineAttr(n, attrSourceLine, line(off))
			}
		case *ast.ThematicBreak:
			if off, ok := nextThematicBreak(source, cursor); ok {
				setLineAttr(n, attrSourceLine, line(off))
				cursor = off
			}
		case *ast.FencedCodeBlock:
			annotateFenced(node, line)
		case *ast.CodeBlock:
			// Indented blocks: content starts on the block's own line.
			if off, ok := minSegmentStart(n); ok {
				l := line(off)
				setLineAttr(n, attrSourceLine, l)
				setLineAttr(n, attrSourceLineStart, l)
			}
		case *MathBlock:
			start := line(node.openOffset)
			setLineAttr(n, attrSourceLine, start)
			end := start
			if node.closeOffset >= 0 {
				end = line(node.closeOffset)
			} else if l := n.Lines(); l.Len() > 0 {
				end = line(l.At(l.Len() - 1).Stop - 1)
			}
			setLineAttr(n, attrSourceLineEnd, end)
		case *MathSpan:
			if node.Display {
				setLineAttr(n, attrSourceLine, line(node.Segment.Start))
				setLineAttr(n, attrSourceLineEnd, line(node.Segment.Stop-1))
			}
		case *extast.TableRow:
			if off, ok := minSegmentStart(n); ok {
				setLineAttr(n, attrSourceLine, line(off))
			}
		}
		return ast.WalkContinue, nil
	})
}

// annotateFenced stamps a fenced code block. The info string sits on the
// opening fence line; content starts one line below it.
func annotateFenced(n *ast.FencedCodeBlock, line LineMapper) {
	var open int
	switch {
	case n.Info != nil:
		open = line(n.Info.Segment.Start)
	case n.Lines().Len() > 0:
		open = line(n.Lines().At(0).Start) - 1
	default:
		return
	}
	setLineAttr(n, attrSourceLine, open)
	setLineAttr(n, attrSourceLineStart, open+1)
}

func setLineAttr(n ast.Node, name string, value int) {
	n.SetAttributeString(name, strconv.Itoa(value))
}

// minSegmentStart finds the smallest source offset covered by a node or its
// descendants. Blocks expose line segments; inline text carries its own.
func minSegmentStart(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock {
		if l := n.Lines(); l != nil && l.Len() > 0 {
			return l.At(0).Start, true
		}
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := minSegmentStart(c); ok {
			return off, true
		}
	}
	return 0, false
}

// maxSegmentStop finds the largest source offset covered by a node or its
// descendants.
func maxSegmentStop(n ast.Node) (int, bool) {
	best := -1
	if n.Type() == ast.TypeBlock {
		if l := n.Lines(); l != nil && l.Len() > 0 {
			best = l.At(l.Len() - 1).Stop
		}
	}
	if t, ok := n.(*ast.Text); ok && t.Segment.Stop > best {
		best = t.Segment.Stop
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := maxSegmentStop(c); ok && off > best {
			best = off
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// nextThematicBreak scans forward from an offset for the next line that is a
// thematic break, returning the line's start offset.
func nextThematicBreak(source []byte, from int) (int, bool) {
	if from > len(source) {
		return 0, false
	}
	start := 0
	if i := bytes.LastIndexByte(source[:from], '\n'); i >= 0 {
		start = i + 1
	}
	for start <= len(source) {
		rel := bytes.IndexByte(source[start:], '\n')
		end := len(source)
		if rel >= 0 {
			end = start + rel
		}
		if isThematicBreakLine(source[start:end]) {
			return start, true
		}
		if rel < 0 {
			break
		}
		start = end + 1
	}
	return 0, false
}

// isThematicBreakLine reports whether a line consists of three or more of the
// same break character (-, _, *), optionally separated by spaces.
func isThematicBreakLine(line []byte) bool {
	var marker byte
	count := 0
	for _, c := range line {
		switch c {
		case ' ', '\t':
			continue
		case '-', '_', '*':
			if marker == 0 {
				marker = c
			}
			if c != marker {
				return false
			}
			count++
		default:
			return false
		}
	}
	return count >= 3
}
