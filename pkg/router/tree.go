package router

import (
	"fmt"
	"regexp"
	"strings"
)

// node is one trie node. Static children are keyed by the first segment
// of their (possibly compressed) key; a node has at most one parameter
// child and at most one wildcard child. Nodes are immutable once the
// tree is built: route table edits rebuild the tree and swap the root.
type node struct {
	// keySegs is the compressed static key, one or more path segments.
	// Empty for the root and for parameter/wildcard nodes.
	keySegs []string

	static   map[string]*node
	param    *node
	wildcard *node

	// Parameter/wildcard info.
	name     string
	optional bool
	re       *regexp.Regexp

	// records terminating at this node, in registration order. More
	// than one means aliasing; the first registered wins ties.
	records []*RouteRecord
}

// compile builds the trie and the name index from the record tree.
// Records are annotated in place with their parent and parsed pattern.
func compile(roots []*RouteRecord) (*node, map[string]*RouteRecord, error) {
	root := &node{}
	names := make(map[string]*RouteRecord)
	for _, rec := range roots {
		if err := insertRecord(root, rec, nil, names); err != nil {
			return nil, nil, err
		}
	}
	root.compress()
	return root, names, nil
}

// insertRecord inserts rec, its aliases and its children.
func insertRecord(root *node, rec, parent *RouteRecord, names map[string]*RouteRecord) error {
	rec.parent = parent

	parentFull := "/"
	if parent != nil {
		parentFull = parent.fullPath
	}
	full := joinPattern(parentFull, rec.Path)

	segs, err := parsePattern(full)
	if err != nil {
		return err
	}
	rec.segments = segs
	rec.fullPath = full

	if rec.Name != "" {
		if prev, ok := names[rec.Name]; ok && prev != rec {
			return fmt.Errorf("%w: %q", ErrDuplicateRouteName, rec.Name)
		}
		names[rec.Name] = rec
	}

	if err := insertSegments(root, full, segs, rec); err != nil {
		return err
	}
	for _, alias := range rec.Alias {
		aliasFull := joinPattern(parentFull, alias)
		aliasSegs, err := parsePattern(aliasFull)
		if err != nil {
			return err
		}
		if err := insertSegments(root, aliasFull, aliasSegs, rec); err != nil {
			return err
		}
	}

	for _, child := range rec.Children {
		if err := insertRecord(root, child, rec, names); err != nil {
			return err
		}
	}
	return nil
}

// joinPattern resolves a child pattern against its parent's full
// pattern. Absolute child paths stand alone.
func joinPattern(parentFull, path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	if path == "" {
		return parentFull
	}
	if parentFull == "/" || parentFull == "" {
		return "/" + path
	}
	return parentFull + "/" + path
}

// insertSegments descends through (creating) trie nodes and terminates
// rec at the final node. A pattern with trailing optional parameters
// also terminates at each node before those parameters, so the matcher
// accepts the path with or without them.
func insertSegments(root *node, pattern string, segs []patternSegment, rec *RouteRecord) error {
	n := root
	// visited[i] is the node before segment i was consumed.
	visited := make([]*node, 0, len(segs)+1)

	for _, seg := range segs {
		visited = append(visited, n)
		switch seg.kind {
		case segStatic:
			child, ok := n.static[seg.literal]
			if !ok {
				child = &node{keySegs: []string{seg.literal}}
				if n.static == nil {
					n.static = make(map[string]*node)
				}
				n.static[seg.literal] = child
			}
			n = child

		case segParam:
			if n.param != nil && n.param.name != seg.name {
				return fmt.Errorf("%w: %q vs %q in pattern %q",
					ErrConflictingParameter, n.param.name, seg.name, pattern)
			}
			if n.param == nil {
				n.param = &node{name: seg.name, optional: seg.optional, re: seg.re}
			}
			n = n.param

		case segWildcard:
			if n.wildcard != nil && n.wildcard.name != seg.name {
				return fmt.Errorf("%w: %q vs %q in pattern %q",
					ErrConflictingParameter, n.wildcard.name, seg.name, pattern)
			}
			if n.wildcard == nil {
				n.wildcard = &node{name: seg.name}
			}
			n = n.wildcard
		}
	}

	n.records = append(n.records, rec)

	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].kind != segParam || !segs[i].optional {
			break
		}
		visited[i].records = append(visited[i].records, rec)
	}
	return nil
}

// compress merges single-child static chains bottom-up. A node absorbs
// its sole static child only when the node terminates no record and has
// no parameter or wildcard child; parameter and wildcard boundaries are
// never crossed, and the root keeps its empty key.
func (n *node) compress() {
	for _, c := range n.static {
		c.compress()
	}
	if n.param != nil {
		n.param.compress()
	}
	if n.wildcard != nil {
		n.wildcard.compress()
	}

	for len(n.keySegs) > 0 && len(n.records) == 0 &&
		n.param == nil && n.wildcard == nil && len(n.static) == 1 {
		var child *node
		for _, c := range n.static {
			child = c
		}
		n.keySegs = append(n.keySegs, child.keySegs...)
		n.static = child.static
		n.param = child.param
		n.wildcard = child.wildcard
		n.records = child.records
	}
}

// size reports the node count, root included. Exercised by tests to pin
// the compression invariants.
func (n *node) size() int {
	total := 1
	for _, c := range n.static {
		total += c.size()
	}
	if n.param != nil {
		total += n.param.size()
	}
	if n.wildcard != nil {
		total += n.wildcard.size()
	}
	return total
}
