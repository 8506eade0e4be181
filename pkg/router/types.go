package router

// ComponentRef is an opaque reference to whatever the rendering layer
// mounts for a matched record. The router stores and forwards it, never
// inspects it.
type ComponentRef any

// ComponentResolver picks a component variant by capability (device
// class, template variant) at render time. Resolution is the rendering
// collaborator's job; the router treats the resolver as one more opaque
// component reference.
type ComponentResolver func(capability string) ComponentRef

// Meta is an open key-value bag attached to a route record. Plugins
// define their own keys; the router only merges and passes it through.
type Meta map[string]any

// Params holds parameters extracted from a matched path. Named
// parameters have a single value; wildcard captures hold one value per
// remaining segment, like url.Values.
type Params map[string][]string

// Get returns the first value for the named parameter, or "".
func (p Params) Get(name string) string {
	if vs := p[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Set replaces the named parameter with a single value.
func (p Params) Set(name, value string) {
	p[name] = []string{value}
}

// clone returns a deep copy so that locations stay immutable.
func (p Params) clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, vs := range p {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// RouteRecord is a registered route definition. Records form a tree:
// child paths are relative to their parent unless they start with "/".
// A record is owned by whoever registered it; the router annotates it
// during compilation and holds it for the router's lifetime.
type RouteRecord struct {
	// Path is the route pattern, relative to the parent record.
	Path string

	// Name optionally identifies the record for name-based resolution.
	// Names are unique across the route table.
	Name string

	// Component is the opaque reference rendered for this record.
	Component ComponentRef

	// Components maps named view slots to component references. Set
	// either Component or Components, not both.
	Components map[string]ComponentRef

	// Meta is merged over ancestor metas in the resolved location,
	// child keys overriding parent keys.
	Meta Meta

	// Children are nested records matched as deeper chain entries.
	Children []*RouteRecord

	// Redirect, when non-empty, rewrites any navigation that matches
	// this record to the given target before guards run. Counts against
	// the redirect hop limit.
	Redirect string

	// Alias registers additional patterns that resolve to this record.
	Alias []string

	// BeforeEnter guards run when the record enters the matched chain.
	BeforeEnter []Guard

	// BeforeUpdate guards run when the record stays in the chain while
	// its parameters change.
	BeforeUpdate []Guard

	// BeforeLeave guards run when the record leaves the matched chain.
	BeforeLeave []Guard

	// Set during compilation.
	parent   *RouteRecord
	segments []patternSegment
	fullPath string
}

// FullPath returns the record's absolute pattern, joined with its
// ancestors. Empty until the record is registered.
func (rec *RouteRecord) FullPath() string { return rec.fullPath }

// Parent returns the enclosing record, or nil for a root record.
func (rec *RouteRecord) Parent() *RouteRecord { return rec.parent }

// chain returns the records from root ancestor to rec.
func (rec *RouteRecord) chain() []*RouteRecord {
	var n int
	for r := rec; r != nil; r = r.parent {
		n++
	}
	out := make([]*RouteRecord, n)
	for r := rec; r != nil; r = r.parent {
		n--
		out[n] = r
	}
	return out
}

// mergedMeta folds the metas of a matched chain, child over parent.
func mergedMeta(chain []*RouteRecord) Meta {
	out := make(Meta)
	for _, rec := range chain {
		for k, v := range rec.Meta {
			out[k] = v
		}
	}
	return out
}

// MatchedChain is the result of a successful match: the records from
// root ancestor to matched leaf, the extracted parameters, and the path
// that matched. Recomputed per resolution.
type MatchedChain struct {
	Records []*RouteRecord
	Params  Params
	Path    string
}

// Leaf returns the deepest matched record.
func (m *MatchedChain) Leaf() *RouteRecord {
	if m == nil || len(m.Records) == 0 {
		return nil
	}
	return m.Records[len(m.Records)-1]
}
