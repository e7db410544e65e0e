// Package filehandler resolves video media types and opens video sources for
// upload.
//
// Sources are either local filesystem paths or s3://bucket/key object
// references. Media types are resolved purely from the file extension; content
// is never sniffed.
package filehandler

import (
	"strings"
)

// DefaultMIMEType is used when the extension does not map to a known video type.
const DefaultMIMEType = "application/octet-stream"

// SupportedVideoExtensions maps lowercase video extensions (without the dot)
// to their media type.
var SupportedVideoExtensions = map[string]string{
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"m4v":  "video/x-m4v",
}

// GuessVideoMIMEType returns the media type for the extension of p, which may
// be a filesystem path or the path component of a URL. The extension is the
// text after the last '.', compared case-insensitively. ok is false when p has
// no extension or the extension is not a known video type.
func GuessVideoMIMEType(p string) (mimeType string, ok bool) {
	idx := strings.LastIndex(p, ".")
	if idx < 0 {
		return "", false
	}
	mimeType, ok = SupportedVideoExtensions[strings.ToLower(p[idx+1:])]
	return mimeType, ok
}

// VideoMIMETypeOrDefault is GuessVideoMIMEType with DefaultMIMEType substituted
// for no match.
func VideoMIMETypeOrDefault(p string) string {
	if mimeType, ok := GuessVideoMIMEType(p); ok {
		return mimeType
	}
	return DefaultMIMEType
}

// IsVideo returns true if the path has a known video extension.
func IsVideo(p string) bool {
	_, ok := GuessVideoMIMEType(p)
	return ok
}
