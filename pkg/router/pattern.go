package router

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentKind discriminates pattern segments.
type segmentKind int

const (
	segStatic segmentKind = iota
	segParam
	segWildcard
)

// wildcardDefaultName is the capture name for a bare "*" segment.
const wildcardDefaultName = "pathMatch"

// patternSegment is one parsed piece of a route pattern. Immutable after
// parsing.
type patternSegment struct {
	kind     segmentKind
	literal  string         // static text, segStatic only
	name     string         // capture name, segParam and segWildcard
	optional bool           // trailing ? on a parameter
	re       *regexp.Regexp // optional constraint on a parameter
}

// parsePattern parses a route pattern into ordered segments.
//
// Grammar rules enforced here:
//   - ":" starts a named parameter; a trailing "?" marks it optional
//   - an optional "(re)" between name and "?" constrains the parameter
//   - optional parameters may be followed only by optional parameters or
//     a wildcard
//   - "*" (optionally followed by a capture name) must be the final
//     segment
//   - parameter names are unique within one pattern
func parsePattern(pattern string) ([]patternSegment, error) {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil, nil
	}

	raw := strings.Split(trimmed, "/")
	segs := make([]patternSegment, 0, len(raw))
	names := make(map[string]bool)
	sawOptional := false

	for i, s := range raw {
		switch {
		case s == "":
			return nil, malformed(pattern, "empty segment")

		case strings.HasPrefix(s, "*"):
			if i != len(raw)-1 {
				return nil, malformed(pattern, "wildcard must be the final segment")
			}
			name := s[1:]
			if name == "" {
				name = wildcardDefaultName
			}
			if !isParamName(name) {
				return nil, malformed(pattern, fmt.Sprintf("invalid wildcard name %q", name))
			}
			if names[name] {
				return nil, malformed(pattern, fmt.Sprintf("duplicate parameter name %q", name))
			}
			names[name] = true
			segs = append(segs, patternSegment{kind: segWildcard, name: name})

		case strings.HasPrefix(s, ":"):
			seg, err := parseParamSegment(pattern, s)
			if err != nil {
				return nil, err
			}
			if names[seg.name] {
				return nil, malformed(pattern, fmt.Sprintf("duplicate parameter name %q", seg.name))
			}
			names[seg.name] = true
			if sawOptional && !seg.optional {
				return nil, malformed(pattern, "required segment after optional parameter")
			}
			sawOptional = sawOptional || seg.optional
			segs = append(segs, seg)

		default:
			if sawOptional {
				return nil, malformed(pattern, "required segment after optional parameter")
			}
			segs = append(segs, patternSegment{kind: segStatic, literal: s})
		}
	}

	return segs, nil
}

// parseParamSegment parses ":name", ":name?", ":name(re)" or ":name(re)?".
func parseParamSegment(pattern, s string) (patternSegment, error) {
	body := s[1:]
	seg := patternSegment{kind: segParam}

	if strings.HasSuffix(body, "?") {
		seg.optional = true
		body = body[:len(body)-1]
	}

	if open := strings.IndexByte(body, '('); open != -1 {
		if !strings.HasSuffix(body, ")") {
			return seg, malformed(pattern, "unterminated parameter constraint")
		}
		expr := body[open+1 : len(body)-1]
		re, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return seg, malformed(pattern, fmt.Sprintf("invalid constraint %q: %v", expr, err))
		}
		seg.re = re
		body = body[:open]
	}

	if !isParamName(body) {
		return seg, malformed(pattern, fmt.Sprintf("invalid parameter name %q", body))
	}
	seg.name = body
	return seg, nil
}

// isParamName reports whether s is a valid capture name: letters,
// digits and underscore, not starting with a digit.
func isParamName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// interpolate substitutes params into a parsed pattern, the inverse of
// matching. Used for name-based resolution. A missing value for a
// required parameter is ErrInvalidParams; a missing optional or wildcard
// value truncates the path there, which is valid by construction since
// optionals are trailing.
func interpolate(pattern string, segs []patternSegment, params Params) (string, error) {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.kind {
		case segStatic:
			b.WriteByte('/')
			b.WriteString(seg.literal)

		case segParam:
			v := params.Get(seg.name)
			if v == "" {
				if seg.optional {
					return orRoot(b.String()), nil
				}
				return "", fmt.Errorf("%w: %q in pattern %q", ErrInvalidParams, seg.name, pattern)
			}
			if seg.re != nil && !seg.re.MatchString(v) {
				return "", fmt.Errorf("%w: %q=%q fails constraint in pattern %q", ErrInvalidParams, seg.name, v, pattern)
			}
			b.WriteByte('/')
			b.WriteString(v)

		case segWildcard:
			vs := params[seg.name]
			if len(vs) == 0 {
				return orRoot(b.String()), nil
			}
			for _, v := range vs {
				b.WriteByte('/')
				b.WriteString(v)
			}
		}
	}
	return orRoot(b.String()), nil
}

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
