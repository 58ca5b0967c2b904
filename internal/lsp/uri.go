package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// uriToPath maps a file:// URI to an absolute path; other schemes map to "".
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	var path string
	switch parsed.Scheme {
	case "file":
		path = parsed.Path
	case "":
		path = uri
	default:
		return ""
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	// file:///C:/x on Windows
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}

// canonicalURI round-trips uri through a path so that equivalent
// spellings share one key.
func canonicalURI(uri string) string {
	if path := uriToPath(uri); path != "" {
		return pathToURI(path)
	}
	return uri
}
