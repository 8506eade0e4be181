package router

import "fmt"

// FailureKind classifies a non-exceptional navigation outcome.
type FailureKind int

const (
	// FailureDuplicated: the target resolves to the current location and
	// the navigation was not forced. No guards ran.
	FailureDuplicated FailureKind = iota + 1

	// FailureCancelled: a newer navigation was issued before this one
	// could commit.
	FailureCancelled

	// FailureAborted: a guard returned Abort, or the history
	// collaborator rejected the commit (Err carries its error).
	FailureAborted

	// FailureGuardError: a guard returned an error; the wrapped error is
	// in Err and was also broadcast to OnError handlers.
	FailureGuardError

	// FailureRedirectLoop: the redirect hop counter exceeded the limit.
	FailureRedirectLoop

	// FailureNoMatch: the target matched no registered route.
	FailureNoMatch
)

// String returns the stable wire name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureDuplicated:
		return "duplicated"
	case FailureCancelled:
		return "cancelled"
	case FailureAborted:
		return "aborted"
	case FailureGuardError:
		return "guard-error"
	case FailureRedirectLoop:
		return "redirect-loop"
	case FailureNoMatch:
		return "no-match"
	default:
		return "unknown"
	}
}

// NavigationFailure is the structured outcome of a navigation attempt
// that did not commit. It is the returned value of Push and Replace,
// never an error: the current location is guaranteed unchanged.
type NavigationFailure struct {
	Kind FailureKind

	// From is the location the navigation started from.
	From *Location

	// To is the resolved target, when resolution got that far.
	To *Location

	// Err carries the guard error for FailureGuardError.
	Err error
}

func (f *NavigationFailure) Error() string {
	to := "?"
	if f.To != nil {
		to = f.To.FullPath
	}
	if f.Err != nil {
		return fmt.Sprintf("navigation to %s failed: %s: %v", to, f.Kind, f.Err)
	}
	return fmt.Sprintf("navigation to %s failed: %s", to, f.Kind)
}

func (f *NavigationFailure) Unwrap() error { return f.Err }
