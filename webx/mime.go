package webx

import "strings"

var mimeTypes = map[string]string{
	"css":  "text/css",
	"gif":  "image/gif",
	"html": "text/html",
	"htm":  "text/html",
	"jpg":  "image/jpeg",
	"js":   "application/javascript",
	"json": "application/json",
	"png":  "image/png",
	"txt":  "text/plain",
}

// MimeType maps a file extension to its media type,
// application/octet-stream when unknown.
func MimeType(ext string) string {
	if t, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return t
	}
	return "application/octet-stream"
}
