// Package history abstracts the session history that persists and
// replays the current URL. The navigation pipeline calls Push or Replace
// exactly once per committed navigation and re-enters itself for
// externally triggered moves (back/forward) reported through Listen.
package history

// Listener is notified when the current entry changes through history
// traversal (Go, back, forward), not through Push or Replace initiated
// by the router itself.
type Listener func(fullPath string)

// History is the collaborator that owns the URL stack.
type History interface {
	// Location returns the full path of the current entry.
	Location() string

	// Push appends a new entry and makes it current.
	Push(fullPath string) error

	// Replace swaps the current entry in place.
	Replace(fullPath string) error

	// Go moves delta entries through the stack. Out-of-range deltas are
	// clamped silently. Listeners observe the resulting entry.
	Go(delta int)

	// Listen registers a traversal listener and returns its remover.
	Listen(fn Listener) (remove func())
}
