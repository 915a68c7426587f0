package mdpreview

import "regexp"

// Line ending normalization. Only transforms that preserve the line count
// are allowed here; anything that adds or removes lines would invalidate
// the source-line mapping built downstream.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
