package postproc

import "strings"

// mimeForExtension maps an image file extension to its MIME type. Unknown
// extensions fall back to image/png, which browsers sniff past anyway.
func mimeForExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "svg":
		return "image/svg+xml"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "ico":
		return "image/x-icon"
	default:
		return "image/png"
	}
}
