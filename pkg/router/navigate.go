package router

import (
	"context"
	"errors"
	"time"
)

// navMode selects the history side effect applied at commit.
type navMode int

const (
	modePush navMode = iota
	modeReplace
)

func (m navMode) String() string {
	if m == modeReplace {
		return "replace"
	}
	return "push"
}

// NavigateOption configures one navigation.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	force bool
}

// WithForce bypasses duplicate detection, so navigating to the current
// location runs the full pipeline again.
func WithForce() NavigateOption {
	return func(o *navigateOptions) { o.force = true }
}

// Event describes a finished navigation attempt, committed or failed.
// Delivered to AfterEach hooks.
type Event struct {
	// To is the resolved target; nil when resolution itself failed.
	To *Location

	// From is the location the navigation started from.
	From *Location

	// Failure is nil for a committed navigation.
	Failure *NavigationFailure

	// Duration covers resolution, guards and commit.
	Duration time.Duration

	// RedirectHops counts guard and record redirects taken.
	RedirectHops int

	// Sequence is the navigation's sequence id.
	Sequence int64

	// Mode is "push" or "replace".
	Mode string
}

// navigation is one in-flight attempt. Redirects restart the pipeline
// but keep the same navigation, so the hop counter and sequence id
// survive across hops.
type navigation struct {
	id      int64
	mode    navMode
	force   bool
	hops    int
	started time.Time
}

// Push navigates to the target, appending a history entry at commit.
//
// The returned *NavigationFailure is the navigation's outcome when it
// did not commit for a reason that is part of normal operation
// (duplicated, cancelled, aborted, guard-error, redirect-loop,
// no-match); the current location is unchanged in every such case. The
// error return is reserved for misuse: unknown route names, missing
// parameters, hostile paths.
func (r *Router) Push(ctx context.Context, to Target, opts ...NavigateOption) (*NavigationFailure, error) {
	return r.navigate(ctx, to, modePush, collectOptions(opts))
}

// Replace navigates like Push but swaps the current history entry.
func (r *Router) Replace(ctx context.Context, to Target, opts ...NavigateOption) (*NavigationFailure, error) {
	return r.navigate(ctx, to, modeReplace, collectOptions(opts))
}

// Back moves one entry back in history. The resulting traversal
// re-enters the pipeline through the history listener.
func (r *Router) Back() { r.hist.Go(-1) }

// Forward moves one entry forward in history.
func (r *Router) Forward() { r.hist.Go(1) }

// Go moves delta entries through history.
func (r *Router) Go(delta int) { r.hist.Go(delta) }

// onHistoryMove handles externally triggered traversals (user-driven
// back/forward) as replace-like navigations through the same pipeline.
func (r *Router) onHistoryMove(fullPath string) {
	fail, err := r.navigate(context.Background(), To(fullPath), modeReplace, navigateOptions{})
	if err != nil {
		r.logger.Error("history traversal failed", "path", fullPath, "error", err)
		return
	}
	if fail != nil {
		r.logger.Warn("history traversal did not commit",
			"path", fullPath, "failure", fail.Kind.String())
	}
}

func collectOptions(opts []NavigateOption) navigateOptions {
	var o navigateOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// navigate allocates the next sequence id and runs the pipeline. Every
// outcome, success or failure, is reported to AfterEach hooks.
func (r *Router) navigate(ctx context.Context, raw Target, mode navMode, o navigateOptions) (*NavigationFailure, error) {
	nav := &navigation{
		id:      r.seq.Add(1),
		mode:    mode,
		force:   o.force,
		started: time.Now(),
	}

	for {
		from := r.CurrentLocation()

		to, err := r.Resolve(raw)
		if err != nil {
			if errors.Is(err, ErrNoMatch) {
				fail := &NavigationFailure{Kind: FailureNoMatch, From: from, Err: err}
				r.finish(nav, nil, from, fail)
				return fail, nil
			}
			return nil, err
		}

		// A record-level redirect rewrites the target before any guard
		// runs and counts as a hop.
		if leaf := to.Leaf(); leaf != nil && leaf.Redirect != "" {
			if fail := nav.hop(r.maxRedirects, to, from); fail != nil {
				r.finish(nav, to, from, fail)
				return fail, nil
			}
			raw = To(leaf.Redirect)
			continue
		}

		// Navigating to the current location is a no-op unless forced:
		// no guards run, no state changes.
		if !nav.force && to.FullPath == from.FullPath {
			fail := &NavigationFailure{Kind: FailureDuplicated, From: from, To: to}
			r.finish(nav, to, from, fail)
			return fail, nil
		}

		res := r.runGuards(ctx, nav, to, from)
		if res.fail != nil {
			r.finish(nav, to, from, res.fail)
			return res.fail, nil
		}
		if res.redirect != nil {
			if fail := nav.hop(r.maxRedirects, to, from); fail != nil {
				r.finish(nav, to, from, fail)
				return fail, nil
			}
			raw = *res.redirect
			continue
		}

		fail, err := r.commit(nav, to)
		if err != nil {
			// A rejected history write still finished the attempt;
			// hooks observe it as an aborted navigation carrying the
			// collaborator's error.
			r.finish(nav, to, from, &NavigationFailure{Kind: FailureAborted, From: from, To: to, Err: err})
			return nil, err
		}
		if fail != nil {
			r.finish(nav, to, from, fail)
			return fail, nil
		}

		r.finish(nav, to, from, nil)
		return nil, nil
	}
}

// pipeResult is the outcome of the guard phases.
type pipeResult struct {
	fail     *NavigationFailure
	redirect *Target
}

// runGuards executes the guard phases strictly in order: leave guards
// (deepest first), global beforeEach, per-entering beforeEnter (root to
// leaf), per-updating update guards, global beforeResolve. Each
// outcome is awaited before the next guard runs; later guards may
// depend on earlier ones' side effects, so phases are never
// parallelized across records.
func (r *Router) runGuards(ctx context.Context, nav *navigation, to, from *Location) pipeResult {
	leaving, updating, entering := diffChains(from, to)

	r.hooksMu.RLock()
	beforeEach := r.snapshotGuards(r.beforeEach)
	beforeResolve := r.snapshotGuards(r.beforeResolve)
	r.hooksMu.RUnlock()

	var ordered []Guard
	for _, rec := range leaving {
		ordered = append(ordered, rec.BeforeLeave...)
	}
	ordered = append(ordered, beforeEach...)
	for _, rec := range entering {
		ordered = append(ordered, rec.BeforeEnter...)
	}
	for _, rec := range updating {
		ordered = append(ordered, rec.BeforeUpdate...)
	}
	ordered = append(ordered, beforeResolve...)

	for _, g := range ordered {
		// Cancellation is a pure function of (this id, latest id),
		// checked at every step.
		if r.seq.Load() != nav.id {
			return pipeResult{fail: &NavigationFailure{Kind: FailureCancelled, From: from, To: to}}
		}

		outcome, err := g(ctx, to, from)
		if err != nil {
			r.broadcastError(err, to, from)
			return pipeResult{fail: &NavigationFailure{Kind: FailureGuardError, From: from, To: to, Err: err}}
		}
		switch outcome.kind {
		case outcomeAbort:
			return pipeResult{fail: &NavigationFailure{Kind: FailureAborted, From: from, To: to}}
		case outcomeRedirect:
			target := outcome.target
			return pipeResult{redirect: &target}
		}
	}
	return pipeResult{}
}

// commit applies the history side effect and swaps the current
// location. The sequence id is re-checked under the location lock, so
// the check and the swap are atomic with respect to competing commits:
// only the most recently issued navigation can confirm.
func (r *Router) commit(nav *navigation, to *Location) (*NavigationFailure, error) {
	r.currentMu.Lock()
	defer r.currentMu.Unlock()

	if r.seq.Load() != nav.id {
		return &NavigationFailure{Kind: FailureCancelled, From: r.current, To: to}, nil
	}

	var err error
	if nav.mode == modePush {
		err = r.hist.Push(to.FullPath)
	} else {
		err = r.hist.Replace(to.FullPath)
	}
	if err != nil {
		return nil, err
	}

	r.current = to
	return nil, nil
}

// finish reports the outcome to AfterEach hooks. Hooks run after the
// location swap; they observe, never block or abort.
func (r *Router) finish(nav *navigation, to, from *Location, fail *NavigationFailure) {
	r.hooksMu.RLock()
	hooks := make([]Hook, len(r.afterEach))
	for i, e := range r.afterEach {
		hooks[i] = e.h
	}
	r.hooksMu.RUnlock()

	evt := Event{
		To:           to,
		From:         from,
		Failure:      fail,
		Duration:     time.Since(nav.started),
		RedirectHops: nav.hops,
		Sequence:     nav.id,
		Mode:         nav.mode.String(),
	}
	for _, h := range hooks {
		h(evt)
	}
}

// broadcastError delivers a guard error to OnError handlers.
func (r *Router) broadcastError(err error, to, from *Location) {
	r.hooksMu.RLock()
	handlers := make([]ErrorHandler, len(r.errHandlers))
	for i, e := range r.errHandlers {
		handlers[i] = e.h
	}
	r.hooksMu.RUnlock()

	for _, h := range handlers {
		h(err, to, from)
	}
}

// hop counts a redirect. A redirect restarts the pipeline with the same
// sequence id: it is not a new user-initiated navigation, and letting
// it re-enter the id race would allow an unrelated concurrent
// navigation to interleave ahead of its own redirect target. This is a
// deliberate exception to strict sequence-id ordering.
func (nav *navigation) hop(max int, to, from *Location) *NavigationFailure {
	nav.hops++
	if nav.hops > max {
		return &NavigationFailure{Kind: FailureRedirectLoop, From: from, To: to}
	}
	return nil
}

// diffChains classifies records against the active chain: leaving
// (present only in the old chain, deepest first), updating (present in
// both while the parameters change), entering (present only in the new
// chain, root first).
func diffChains(from, to *Location) (leaving, updating, entering []*RouteRecord) {
	oldSet := make(map[*RouteRecord]bool, len(from.Matched))
	for _, rec := range from.Matched {
		oldSet[rec] = true
	}
	newSet := make(map[*RouteRecord]bool, len(to.Matched))
	for _, rec := range to.Matched {
		newSet[rec] = true
	}

	for i := len(from.Matched) - 1; i >= 0; i-- {
		if rec := from.Matched[i]; !newSet[rec] {
			leaving = append(leaving, rec)
		}
	}

	paramsChanged := !paramsEqual(from.Params, to.Params)
	for _, rec := range to.Matched {
		switch {
		case !oldSet[rec]:
			entering = append(entering, rec)
		case paramsChanged:
			updating = append(updating, rec)
		}
	}
	return leaving, updating, entering
}

func paramsEqual(a, b Params) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
	}
	return true
}
