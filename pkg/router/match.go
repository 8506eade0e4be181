package router

import (
	"strings"

	"github.com/wayfind-go/wayfind/pkg/routepath"
)

// match walks the trie for a canonical path and returns the matched
// chain, or nil when no record matches. Segments are percent-decoded
// before the walk; escape validity was established during
// canonicalization.
func (n *node) matchPath(path string) *MatchedChain {
	segs, err := routepath.Segments(path)
	if err != nil {
		return nil
	}
	params := make(Params)
	rec, ok := n.match(segs, params)
	if !ok {
		return nil
	}
	return &MatchedChain{
		Records: rec.chain(),
		Params:  params,
		Path:    path,
	}
}

// match is recursive descent with backtracking. Branch priority at every
// node: exact compressed-static match, then parameter, then wildcard. A
// lower-priority branch is tried only after every higher-priority
// subtree fails for the remaining path; a static prefix may consume more
// of the path than is ultimately matchable at depth, so the matcher
// cannot commit to the first lexical match.
func (n *node) match(segs []string, params Params) (*RouteRecord, bool) {
	if len(segs) == 0 {
		if len(n.records) > 0 {
			return n.records[0], true
		}
		// A wildcard also matches the empty remainder.
		if w := n.wildcard; w != nil && len(w.records) > 0 {
			params[w.name] = []string{}
			return w.records[0], true
		}
		return nil, false
	}

	if child, ok := n.static[segs[0]]; ok && hasPrefix(segs, child.keySegs) {
		if rec, ok := child.match(segs[len(child.keySegs):], params); ok {
			return rec, true
		}
	}

	// A decoded "/" in a single segment is an encoded %2F; only a
	// wildcard may capture it.
	if p := n.param; p != nil && !strings.Contains(segs[0], "/") &&
		(p.re == nil || p.re.MatchString(segs[0])) {
		prev, had := params[p.name]
		params.Set(p.name, segs[0])
		if rec, ok := p.match(segs[1:], params); ok {
			return rec, true
		}
		// Backtrack.
		if had {
			params[p.name] = prev
		} else {
			delete(params, p.name)
		}
	}

	if w := n.wildcard; w != nil && len(w.records) > 0 {
		params[w.name] = append([]string(nil), segs...)
		return w.records[0], true
	}

	return nil, false
}

// hasPrefix reports whether key is a segment-wise prefix of segs.
func hasPrefix(segs, key []string) bool {
	if len(segs) < len(key) {
		return false
	}
	for i := range key {
		if segs[i] != key[i] {
			return false
		}
	}
	return true
}
