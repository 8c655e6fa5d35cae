package canvas

import "strings"

// Export formats.
const (
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatPDF = "pdf"
	FormatSVG = "svg"
)

// mimeTypes maps format names to mime types. "jpeg" is an alias of "jpg".
var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
	"svg":  "image/svg+xml",
}

// formats maps mime types back to canonical format names.
var formats = map[string]string{
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/gif":       "gif",
	"application/pdf": "pdf",
	"image/svg+xml":   "svg",
}

// MimeType returns the mime type of a format name, or "" if unknown.
func MimeType(format string) string {
	return mimeTypes[strings.ToLower(format)]
}

// FormatForMime returns the canonical format name of a mime type, or "".
func FormatForMime(mime string) string {
	return formats[strings.ToLower(mime)]
}

// exportable reports whether the engine can write format.
func exportable(format string) bool {
	switch format {
	case FormatPNG, FormatJPG, FormatPDF, FormatSVG:
		return true
	}
	return false
}

// canonicalFormat lower-cases, strips a leading dot and folds aliases. Mime
// types are accepted too.
func canonicalFormat(s string) string {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if f, ok := formats[s]; ok {
		return f
	}
	if s == "jpeg" {
		return FormatJPG
	}
	return s
}
