// Package routepath normalizes raw navigation paths before they reach
// the route matcher. It splits a raw target into path, query string and
// hash fragment, canonicalizes the path portion, and decodes segments.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Canonicalization and decoding errors.
var (
	ErrAbsoluteURL          = errors.New("absolute URL not allowed as navigation target")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Split divides a raw navigation target into its path, query string
// (without the leading "?") and hash fragment (without the leading "#").
// The hash is cut first so that "?" characters inside the fragment do not
// start a query string.
func Split(raw string) (path, query, hash string) {
	raw, hash, _ = strings.Cut(raw, "#")
	path, query, _ = strings.Cut(raw, "?")
	return path, query, hash
}

// Join reassembles a full path from its parts. It is the inverse of Split
// and produces the canonical string identity of a location.
func Join(path, query, hash string) string {
	var b strings.Builder
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	if hash != "" {
		b.WriteByte('#')
		b.WriteString(hash)
	}
	return b.String()
}

// Canonicalize normalizes the path portion of a navigation target.
//
// Transformations applied:
//   - Ensure a leading slash
//   - Remove the trailing slash (except for root "/")
//   - Collapse repeated slashes (/blog//post -> /blog/post)
//   - Remove "." segments
//   - Resolve ".." segments
//
// Rejected inputs:
//   - Absolute URLs and protocol-relative URLs (open-redirect hardening)
//   - Paths containing a backslash
//   - Paths containing a NUL byte, literal or encoded
//   - Invalid percent escapes (%GG, truncated %2)
//   - ".." sequences that would climb above the root
func Canonicalize(path string) (string, error) {
	if path == "" {
		return "/", nil
	}

	// SECURITY: reject absolute and protocol-relative URLs.
	if strings.HasPrefix(path, "//") || strings.Contains(path, "://") {
		return "", ErrAbsoluteURL
	}

	// SECURITY: reject backslash and NUL, literal or encoded.
	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}

	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", err
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	var out []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", ErrPathEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	return "/" + strings.Join(out, "/"), nil
}

// Segments splits a canonical path into its decoded segments. The root
// path yields nil. A decoded segment may contain "/" when the input
// carried an encoded %2F; the matcher decides per branch whether that
// is allowed.
func Segments(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, nil
	}

	raw := strings.Split(path, "/")
	segs := make([]string, 0, len(raw))
	for _, seg := range raw {
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return nil, ErrInvalidPercentEscape
		}
		segs = append(segs, decoded)
	}
	return segs, nil
}

// validatePercentEscapes checks that every % in the path starts a valid
// two-digit hex escape.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); {
		if path[i] != '%' {
			i++
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 3
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
