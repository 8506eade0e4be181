// Package router implements the navigation core for single-page
// applications: a compressed prefix-tree path matcher and a cancellable,
// redirect-aware guard pipeline that commits navigations to an external
// history collaborator.
//
// # Architecture
//
// Route patterns are parsed into segments (pattern.go), compiled into a
// path-compressed trie (tree.go) and matched with priority-ordered
// backtracking (match.go). Raw navigation targets are normalized into
// immutable Locations (resolve.go). Push and Replace drive the guard
// pipeline (navigate.go): leave guards, global beforeEach, per-record
// beforeEnter, per-record update guards, global beforeResolve, commit,
// afterEach hooks.
//
// # Pattern grammar
//
//	/users/list            static segments
//	/users/:id             named parameter
//	/users/:id(\d+)        parameter with regexp constraint
//	/users/:id/posts/:p?   optional trailing parameter
//	/files/*rest           wildcard capturing remaining segments
//
// # Concurrency
//
// Navigations may be started from any goroutine. Each navigation gets a
// strictly increasing sequence id; only the holder of the latest id may
// commit, so a superseded navigation resolves with a cancelled failure
// and never touches history or the current location. Route table edits
// rebuild the trie under a write lock and swap it atomically; matching
// works on an immutable snapshot.
//
// # Failures
//
// Navigation outcomes that are part of normal operation (duplicated,
// cancelled, aborted, guard-error, redirect-loop, no-match) are returned
// as *NavigationFailure values, never as errors. Errors are reserved for
// misuse: malformed patterns, unknown route names, missing parameters.
package router
