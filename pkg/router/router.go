package router

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/wayfind-go/wayfind/pkg/history"
)

// DefaultMaxRedirects bounds guard and record redirect hops per
// navigation. The bound makes redirect loops deterministic in tests;
// there is no wall-clock component.
const DefaultMaxRedirects = 10

// Router owns the route table, the current location and the guard
// registries, and drives the navigation pipeline.
type Router struct {
	hist         history.History
	logger       *slog.Logger
	maxRedirects int

	// mu guards the route table. Edits rebuild the trie and swap it;
	// matching works on the snapshot taken under the read lock.
	mu    sync.RWMutex
	roots []*RouteRecord
	tree  *node
	names map[string]*RouteRecord

	// currentMu guards the committed location. Commit re-checks the
	// sequence id under this lock, so a superseded navigation can never
	// half-update the location.
	currentMu sync.RWMutex
	current   *Location

	// seq is the last issued navigation sequence id.
	seq atomic.Int64

	hooksMu       sync.RWMutex
	beforeEach    []guardEntry
	beforeResolve []guardEntry
	afterEach     []hookEntry
	errHandlers   []errorEntry
	nextHookID    int

	stopListen func()
}

type guardEntry struct {
	id int
	g  Guard
}

type hookEntry struct {
	id int
	h  Hook
}

type errorEntry struct {
	id int
	h  ErrorHandler
}

// Option configures a Router.
type Option func(*Router)

// WithHistory sets the history collaborator. Defaults to an in-memory
// history at "/".
func WithHistory(h history.History) Option {
	return func(r *Router) { r.hist = h }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// WithMaxRedirects overrides the redirect hop limit.
func WithMaxRedirects(n int) Option {
	return func(r *Router) { r.maxRedirects = n }
}

// WithRoutes registers the initial route records.
func WithRoutes(records ...*RouteRecord) Option {
	return func(r *Router) { r.roots = append(r.roots, records...) }
}

// New compiles the route table and wires the history listener so that
// externally triggered moves (back/forward) re-enter the pipeline.
// Pattern errors surface here, synchronously.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		maxRedirects: DefaultMaxRedirects,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.hist == nil {
		r.hist = history.NewMemory("/")
	}

	tree, names, err := compile(r.roots)
	if err != nil {
		return nil, err
	}
	r.tree = tree
	r.names = names
	r.current = startLocation()
	r.stopListen = r.hist.Listen(r.onHistoryMove)
	return r, nil
}

// Close detaches the router from its history collaborator.
func (r *Router) Close() {
	if r.stopListen != nil {
		r.stopListen()
		r.stopListen = nil
	}
}

// CurrentLocation returns the committed location. The value is
// immutable; callers may hold it across navigations.
func (r *Router) CurrentLocation() *Location {
	r.currentMu.RLock()
	defer r.currentMu.RUnlock()
	return r.current
}

// AddRoute registers a record at the top level and rebuilds the trie.
func (r *Router) AddRoute(rec *RouteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebuildLocked(append(append([]*RouteRecord{}, r.roots...), rec))
}

// AddChildRoute registers a record under the named parent.
func (r *Router) AddChildRoute(parentName string, rec *RouteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.names[parentName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRouteName, parentName)
	}
	parent.Children = append(parent.Children, rec)
	if err := r.rebuildLocked(r.roots); err != nil {
		// The table was not swapped; drop the record that failed to compile.
		parent.Children = parent.Children[:len(parent.Children)-1]
		return err
	}
	return nil
}

// RemoveRoute unregisters the named record and its descendants.
func (r *Router) RemoveRoute(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.names[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRouteName, name)
	}

	if parent := rec.parent; parent != nil {
		parent.Children = removeRecord(parent.Children, rec)
		return r.rebuildLocked(r.roots)
	}
	return r.rebuildLocked(removeRecord(r.roots, rec))
}

// GetRoutes returns every registered record, parents before children.
func (r *Router) GetRoutes() []*RouteRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*RouteRecord
	var walk func(recs []*RouteRecord)
	walk = func(recs []*RouteRecord) {
		for _, rec := range recs {
			out = append(out, rec)
			walk(rec.Children)
		}
	}
	walk(r.roots)
	return out
}

// rebuildLocked compiles candidate roots and swaps the table on success.
// Callers hold r.mu.
func (r *Router) rebuildLocked(roots []*RouteRecord) error {
	tree, names, err := compile(roots)
	if err != nil {
		return err
	}
	r.roots = roots
	r.tree = tree
	r.names = names
	return nil
}

func removeRecord(recs []*RouteRecord, rec *RouteRecord) []*RouteRecord {
	out := recs[:0]
	for _, c := range recs {
		if c != rec {
			out = append(out, c)
		}
	}
	return out
}

// BeforeEach registers a global guard run before per-record enter
// guards. Returns its remover.
func (r *Router) BeforeEach(g Guard) (remove func()) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	id := r.nextHookID
	r.nextHookID++
	r.beforeEach = append(r.beforeEach, guardEntry{id: id, g: g})
	return func() { r.removeGuard(&r.beforeEach, id) }
}

// BeforeResolve registers a global guard run last, after every
// per-record guard and immediately before commit.
func (r *Router) BeforeResolve(g Guard) (remove func()) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	id := r.nextHookID
	r.nextHookID++
	r.beforeResolve = append(r.beforeResolve, guardEntry{id: id, g: g})
	return func() { r.removeGuard(&r.beforeResolve, id) }
}

// AfterEach registers a hook observing finished navigations, committed
// or failed. Hooks cannot block or abort an already-committed
// navigation.
func (r *Router) AfterEach(h Hook) (remove func()) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	id := r.nextHookID
	r.nextHookID++
	r.afterEach = append(r.afterEach, hookEntry{id: id, h: h})
	return func() {
		r.hooksMu.Lock()
		defer r.hooksMu.Unlock()
		for i, e := range r.afterEach {
			if e.id == id {
				r.afterEach = append(r.afterEach[:i], r.afterEach[i+1:]...)
				return
			}
		}
	}
}

// OnError registers a handler for guard errors.
func (r *Router) OnError(h ErrorHandler) (remove func()) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	id := r.nextHookID
	r.nextHookID++
	r.errHandlers = append(r.errHandlers, errorEntry{id: id, h: h})
	return func() {
		r.hooksMu.Lock()
		defer r.hooksMu.Unlock()
		for i, e := range r.errHandlers {
			if e.id == id {
				r.errHandlers = append(r.errHandlers[:i], r.errHandlers[i+1:]...)
				return
			}
		}
	}
}

func (r *Router) removeGuard(list *[]guardEntry, id int) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	for i, e := range *list {
		if e.id == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// Plugin attaches observers (guards, hooks, error handlers) to a router
// and returns a detach function removing everything it registered.
type Plugin func(r *Router) (detach func())

// Use applies a plugin.
func (r *Router) Use(p Plugin) (detach func()) { return p(r) }

// snapshotGuards copies a guard list so the pipeline iterates a stable
// set even if registrations change mid-navigation.
func (r *Router) snapshotGuards(list []guardEntry) []Guard {
	out := make([]Guard, len(list))
	for i, e := range list {
		out[i] = e.g
	}
	return out
}
