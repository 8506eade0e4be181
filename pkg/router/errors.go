package router

import (
	"errors"
	"fmt"
)

// Compile-time errors, surfaced synchronously from New and AddRoute.
var (
	ErrMalformedPattern     = errors.New("malformed route pattern")
	ErrConflictingParameter = errors.New("conflicting parameter at same trie position")
	ErrDuplicateRouteName   = errors.New("duplicate route name")
)

// Resolution-time errors, surfaced from Resolve. Callers typically fall
// back to a catch-all record or a 404-equivalent.
var (
	ErrNoMatch          = errors.New("no route matched")
	ErrUnknownRouteName = errors.New("unknown route name")
	ErrInvalidParams    = errors.New("missing or invalid route parameters")
)

// PatternError wraps a compile-time pattern failure with its pattern.
type PatternError struct {
	Pattern string
	Reason  string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %s", e.Pattern, e.Reason)
}

func (e *PatternError) Unwrap() error { return e.Err }

func malformed(pattern, reason string) error {
	return &PatternError{Pattern: pattern, Reason: reason, Err: ErrMalformedPattern}
}
