package router

import (
	"net/url"

	"github.com/wayfind-go/wayfind/pkg/routepath"
)

// Location is a resolved, canonical navigation target. It is an
// immutable value: the pipeline builds a new Location per resolution and
// swaps the router's current pointer atomically at commit.
type Location struct {
	// Path is the canonical path, without query or hash.
	Path string

	// FullPath is path + encoded query + hash, the canonical string
	// identity of the location. Duplicate detection compares FullPaths.
	FullPath string

	// Query holds the parsed, multi-valued query parameters.
	Query url.Values

	// Hash is the fragment, without the leading "#".
	Hash string

	// Name is the matched leaf record's name, if any.
	Name string

	// Params are the parameters extracted by the matcher or supplied to
	// a name-based resolution.
	Params Params

	// Meta is the union of all matched records' metas, child keys
	// overriding parent keys.
	Meta Meta

	// Matched is the chain of records from root ancestor to leaf. Empty
	// for the start location.
	Matched []*RouteRecord
}

// Leaf returns the deepest matched record, or nil.
func (l *Location) Leaf() *RouteRecord {
	if len(l.Matched) == 0 {
		return nil
	}
	return l.Matched[len(l.Matched)-1]
}

// startLocation is where every router begins before the first
// navigation commits.
func startLocation() *Location {
	return &Location{
		Path:     "/",
		FullPath: "/",
		Query:    url.Values{},
		Params:   Params{},
		Meta:     Meta{},
	}
}

// newLocation assembles an immutable Location from a matched chain.
func newLocation(chain *MatchedChain, query url.Values, hash string) *Location {
	if query == nil {
		query = url.Values{}
	}
	loc := &Location{
		Path:    chain.Path,
		Query:   query,
		Hash:    hash,
		Params:  chain.Params,
		Meta:    mergedMeta(chain.Records),
		Matched: chain.Records,
	}
	if leaf := chain.Leaf(); leaf != nil {
		loc.Name = leaf.Name
	}
	loc.FullPath = routepath.Join(loc.Path, query.Encode(), hash)
	return loc
}
