// Package link turns the hrefs returned by an h5ai search into absolute
// download URLs and display names.
package link

import (
	"net/url"
	"strings"
)

// Resolve builds the absolute URL of href on the server mounted at baseURL.
//
// Some servers echo the full mount path ("/NAME/dir/file.mp4") while others
// return paths relative to the mount root ("/dir/file.mp4"). When href starts
// with "/"+name that prefix is removed once. The result is always
// baseURL without trailing slashes followed by the remaining href; malformed
// input is concatenated as is.
func Resolve(baseURL, name, href string) string {
	base := strings.TrimRight(baseURL, "/")
	if name != "" {
		if rest, ok := strings.CutPrefix(href, "/"+name); ok {
			return base + rest
		}
	}
	return base + href
}

// FileName returns the percent-decoded last path segment of href.
// If the segment cannot be decoded the raw segment is returned.
func FileName(href string) string {
	segment := href
	if i := strings.LastIndex(href, "/"); i >= 0 {
		segment = href[i+1:]
	}
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return decoded
}
