package mdpreview

import "errors"

// Sentinel errors for library operations.
var (
	ErrRenderHTML  = errors.New("HTML rendering failed")
	ErrPostProcess = errors.New("HTML post-processing failed")
)
