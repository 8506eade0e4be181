package router

import (
	"context"
	"sync"
)

// outcomeKind discriminates guard decisions.
type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeAbort
	outcomeRedirect
)

// GuardOutcome is a guard's decision. The zero value continues the
// navigation, so guards that only observe can return GuardOutcome{}.
type GuardOutcome struct {
	kind   outcomeKind
	target Target
}

// Continue lets the navigation proceed to the next guard.
func Continue() GuardOutcome { return GuardOutcome{} }

// Abort stops the navigation; the caller's Push resolves with an
// aborted failure and the current location is unchanged.
func Abort() GuardOutcome { return GuardOutcome{kind: outcomeAbort} }

// RedirectTo restarts the navigation at the given target, reusing the
// same sequence id and counting against the redirect hop limit.
func RedirectTo(to Target) GuardOutcome {
	return GuardOutcome{kind: outcomeRedirect, target: to}
}

// Guard inspects a pending navigation. It receives the resolved target
// and the current location and decides whether the navigation proceeds.
// Returning an error fails the navigation with a guard-error and
// broadcasts the error to OnError handlers. Guards run strictly in
// phase/record order; the pipeline awaits each outcome before invoking
// the next guard.
type Guard func(ctx context.Context, to, from *Location) (GuardOutcome, error)

// NextFunc reports a decision from a callback-style guard. The first
// call wins; subsequent calls are silent no-ops.
type NextFunc func(GuardOutcome)

// NextGuard adapts a callback-style guard — one that reports its
// decision through next, possibly from another goroutine — to the Guard
// type. The adaptation happens once at registration, not per invocation.
// The adapted guard blocks until next is called or ctx is done.
func NextGuard(fn func(ctx context.Context, to, from *Location, next NextFunc)) Guard {
	return func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
		ch := make(chan GuardOutcome, 1)
		var once sync.Once
		next := func(o GuardOutcome) {
			once.Do(func() { ch <- o })
		}

		fn(ctx, to, from, next)

		select {
		case o := <-ch:
			return o, nil
		case <-ctx.Done():
			return GuardOutcome{}, ctx.Err()
		}
	}
}

// Hook observes a finished navigation. Hooks run after commit (or after
// a failure is classified); they cannot block or abort the navigation,
// and their panics are not recovered — hooks are trusted plugin code.
type Hook func(Event)

// ErrorHandler receives guard errors broadcast via OnError.
type ErrorHandler func(err error, to, from *Location)
