package mdext

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// TableRange is the inclusive source-line span of one table, in document
// order.
type TableRange struct {
	Start int
	End   int
}

// ExtractTableRanges collects the source-line span of every table in the
// document, in document order. The spans are stamped onto the rendered
// <table> tags during HTML post-processing rather than on the AST, since the
// table extension owns the tag's attribute rendering.
func ExtractTableRanges(doc ast.Node, line LineMapper) []TableRange {
	var ranges []TableRange
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != extast.KindTable {
			return ast.WalkContinue, nil
		}
		start, okStart := minSegmentStart(n)
		stop, okStop := maxSegmentStop(n)
		if okStart && okStop {
			end := stop - 1
			if end < start {
				end = start
			}
			ranges = append(ranges, TableRange{Start: line(start), End: line(end)})
		}
		return ast.WalkSkipChildren, nil
	})
	return ranges
}
