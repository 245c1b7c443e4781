// Package filetype decides which files are worth listing and how they are
// displayed. Only a fixed set of media and archive extensions is allowed.
package filetype

import (
	"slices"
	"strings"
)

// DefaultIcon is the icon used for extensions without a dedicated icon.
const DefaultIcon = "fa fa-file-o"

// allowedExtensions is the allow-list of file extensions, lowercase.
var allowedExtensions = []string{".mp3", ".mp4", ".mkv", ".iso", ".zip", ".avi"}

// icons maps an extension to its Font Awesome icon class.
var icons = map[string]string{
	".mp4": "fa fa-file-video-o",
	".mkv": "fa fa-file-video-o",
	".mp3": "fa fa-music",
	".zip": "fa fa-file-archive-o",
	".iso": "fa fa-compact-disc",
	".avi": "fa fa-film",
}

// AllowedExtensions returns a copy of the allow-list.
func AllowedExtensions() []string {
	return slices.Clone(allowedExtensions)
}

// IsAllowed reports whether filename ends with an allowed extension.
// The comparison is case-insensitive.
func IsAllowed(filename string) bool {
	_, ok := Extension(filename)
	return ok
}

// Extension returns the allowed extension of filename, lowercased and with
// its leading dot. The second result is false when the file is not allowed.
func Extension(filename string) (string, bool) {
	lower := strings.ToLower(filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext, true
		}
	}
	return "", false
}

// IconFor returns the icon class for ext, or DefaultIcon.
// ext must match exactly, e.g. ".mp4".
func IconFor(ext string) string {
	if icon, ok := icons[ext]; ok {
		return icon
	}
	return DefaultIcon
}
