package router

import (
	"fmt"
	"net/url"

	"github.com/wayfind-go/wayfind/pkg/routepath"
)

// Target is a raw navigation target: either a path string (which may
// carry a query string and hash) or a named route with parameters. Name
// takes precedence over Path when both are set.
type Target struct {
	Path   string
	Name   string
	Params Params
	Query  url.Values
	Hash   string
}

// To wraps a raw path string in a Target.
func To(path string) Target { return Target{Path: path} }

// ToName wraps a named route and its parameters in a Target.
func ToName(name string, params Params) Target {
	return Target{Name: name, Params: params}
}

// Resolve normalizes a raw target into a canonical Location against the
// router's current route table. It is pure: no router state changes and
// no guards run.
//
// Errors: ErrUnknownRouteName for an unregistered name,
// ErrInvalidParams when required parameters are missing or fail their
// constraint, ErrNoMatch when the path matches no record, and the
// routepath canonicalization errors for hostile input.
//
// The read lock is held for the whole match: table edits re-annotate
// the shared records under the write lock, so releasing early would let
// an in-flight match observe a half-annotated record. Matches are
// synchronous and short-lived, so the lock is cheap.
func (r *Router) Resolve(to Target) (*Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolve(r.tree, r.names, to)
}

func resolve(tree *node, names map[string]*RouteRecord, to Target) (*Location, error) {
	if to.Name != "" {
		return resolveName(tree, names, to)
	}

	rawPath, rawQuery, rawHash := routepath.Split(to.Path)
	path, err := routepath.Canonicalize(rawPath)
	if err != nil {
		return nil, err
	}

	query := to.Query
	if query == nil {
		// ParseQuery keeps the pairs it understood; malformed pairs in a
		// hand-typed URL are dropped rather than failing the navigation.
		query, _ = url.ParseQuery(rawQuery)
	} else {
		query = cloneValues(query)
	}
	hash := to.Hash
	if hash == "" {
		hash = rawHash
	}

	chain := tree.matchPath(path)
	if chain == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, path)
	}
	return newLocation(chain, query, hash), nil
}

// resolveName synthesizes a concrete path by substituting params into
// the named record's pattern, then re-validates by matching it.
func resolveName(tree *node, names map[string]*RouteRecord, to Target) (*Location, error) {
	rec, ok := names[to.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRouteName, to.Name)
	}

	path, err := interpolate(rec.fullPath, rec.segments, to.Params)
	if err != nil {
		return nil, err
	}

	chain := tree.matchPath(path)
	if chain == nil {
		return nil, fmt.Errorf("%w: synthesized path %q for route %q does not match",
			ErrInvalidParams, path, to.Name)
	}
	return newLocation(chain, cloneValues(to.Query), to.Hash), nil
}

func cloneValues(q url.Values) url.Values {
	if q == nil {
		return url.Values{}
	}
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
