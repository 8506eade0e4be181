package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wayfind-go/wayfind/pkg/history"
)

// spyHistory records the history side effects the pipeline applies.
type spyHistory struct {
	*history.Memory
	mu       sync.Mutex
	pushes   []string
	replaces []string
}

func newSpyHistory() *spyHistory {
	return &spyHistory{Memory: history.NewMemory("/")}
}

func (s *spyHistory) Push(fullPath string) error {
	s.mu.Lock()
	s.pushes = append(s.pushes, fullPath)
	s.mu.Unlock()
	return s.Memory.Push(fullPath)
}

func (s *spyHistory) Replace(fullPath string) error {
	s.mu.Lock()
	s.replaces = append(s.replaces, fullPath)
	s.mu.Unlock()
	return s.Memory.Replace(fullPath)
}

func (s *spyHistory) pushed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pushes...)
}

// countingGuard returns a guard that counts invocations and continues.
func countingGuard(n *int) Guard {
	return func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
		*n++
		return Continue(), nil
	}
}

func TestPushCommits(t *testing.T) {
	hist := newSpyHistory()
	r, err := New(
		WithRoutes(&RouteRecord{Path: "/users/:id", Name: "user"}),
		WithHistory(hist),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Close()

	fail, err := r.Push(context.Background(), To("/users/42"))
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if fail != nil {
		t.Fatalf("Push failed: %v", fail)
	}

	loc := r.CurrentLocation()
	if loc.FullPath != "/users/42" {
		t.Errorf("CurrentLocation().FullPath = %q, want %q", loc.FullPath, "/users/42")
	}
	if got := hist.pushed(); len(got) != 1 || got[0] != "/users/42" {
		t.Errorf("history pushes = %v, want [/users/42]", got)
	}
}

func TestPushDuplicated(t *testing.T) {
	r := newTestRouter(t, &RouteRecord{Path: "/foo"})

	if fail, err := r.Push(context.Background(), To("/foo?a=1")); err != nil || fail != nil {
		t.Fatalf("initial Push = (%v, %v)", fail, err)
	}

	// Spies prove the short-circuit: no guard phase may run.
	var guardCalls int
	r.BeforeEach(countingGuard(&guardCalls))

	before := r.CurrentLocation()
	fail, err := r.Push(context.Background(), To("/foo?a=1"))
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if fail == nil || fail.Kind != FailureDuplicated {
		t.Fatalf("failure = %v, want duplicated", fail)
	}
	if guardCalls != 0 {
		t.Errorf("guardCalls = %d, want 0", guardCalls)
	}
	if r.CurrentLocation() != before {
		t.Error("duplicated navigation must not change the current location")
	}
}

func TestPushForceBypassesDuplicate(t *testing.T) {
	r := newTestRouter(t, &RouteRecord{Path: "/foo"})

	if fail, _ := r.Push(context.Background(), To("/foo")); fail != nil {
		t.Fatalf("initial Push failed: %v", fail)
	}

	var guardCalls int
	r.BeforeEach(countingGuard(&guardCalls))

	fail, err := r.Push(context.Background(), To("/foo"), WithForce())
	if err != nil || fail != nil {
		t.Fatalf("forced Push = (%v, %v)", fail, err)
	}
	if guardCalls != 1 {
		t.Errorf("guardCalls = %d, want 1", guardCalls)
	}
}

func TestNavigationCancelledBySuperseding(t *testing.T) {
	hist := newSpyHistory()
	page1 := &RouteRecord{Path: "/page1"}
	page2 := &RouteRecord{Path: "/page2"}

	entered := make(chan struct{})
	release := make(chan struct{})
	page1.BeforeEnter = []Guard{
		func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
			close(entered)
			<-release
			return Continue(), nil
		},
	}

	r, err := New(WithRoutes(page1, page2), WithHistory(hist))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Close()

	type result struct {
		fail *NavigationFailure
		err  error
	}
	done := make(chan result, 1)
	go func() {
		fail, err := r.Push(context.Background(), To("/page1"))
		done <- result{fail, err}
	}()

	<-entered

	// Navigation B supersedes A while A is parked in its guard.
	if fail, err := r.Push(context.Background(), To("/page2")); err != nil || fail != nil {
		t.Fatalf("Push(/page2) = (%v, %v)", fail, err)
	}
	if got := r.CurrentLocation().FullPath; got != "/page2" {
		t.Fatalf("CurrentLocation() = %q, want /page2", got)
	}

	close(release)
	res := <-done
	if res.err != nil {
		t.Fatalf("Push(/page1) returned error: %v", res.err)
	}
	if res.fail == nil || res.fail.Kind != FailureCancelled {
		t.Fatalf("failure = %v, want cancelled", res.fail)
	}
	if got := r.CurrentLocation().FullPath; got != "/page2" {
		t.Errorf("CurrentLocation() = %q, releasing A must not move it", got)
	}
	for _, p := range hist.pushed() {
		if p == "/page1" {
			t.Error("cancelled navigation must never reach history")
		}
	}
}

func TestRedirectLoopDetection(t *testing.T) {
	const maxHops = 3

	var guardCalls int
	x := &RouteRecord{Path: "/x"}
	y := &RouteRecord{Path: "/y"}
	x.BeforeEnter = []Guard{func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
		guardCalls++
		return RedirectTo(To("/y")), nil
	}}
	y.BeforeEnter = []Guard{func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
		guardCalls++
		return RedirectTo(To("/x")), nil
	}}

	hist := newSpyHistory()
	r, err := New(WithRoutes(x, y), WithHistory(hist), WithMaxRedirects(maxHops))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Close()

	before := r.CurrentLocation()
	fail, err := r.Push(context.Background(), To("/x"))
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if fail == nil || fail.Kind != FailureRedirectLoop {
		t.Fatalf("failure = %v, want redirect-loop", fail)
	}
	// The loop is detected deterministically at the hop bound.
	if guardCalls != maxHops+1 {
		t.Errorf("guardCalls = %d, want %d", guardCalls, maxHops+1)
	}
	if r.CurrentLocation() != before {
		t.Error("redirect loop must leave the current location unchanged")
	}
	if got := hist.pushed(); len(got) != 0 {
		t.Errorf("history pushes = %v, want none", got)
	}
}

func TestRedirectSuccess(t *testing.T) {
	old := &RouteRecord{Path: "/old"}
	old.BeforeEnter = []Guard{func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
		return RedirectTo(To("/new")), nil
	}}

	hist := newSpyHistory()
	r, err := New(WithRoutes(old, &RouteRecord{Path: "/new"}), WithHistory(hist))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Close()

	fail, err := r.Push(context.Background(), To("/old"))
	if err != nil || fail != nil {
		t.Fatalf("Push = (%v, %v), want success", fail, err)
	}
	if got := r.CurrentLocation().FullPath; got != "/new" {
		t.Errorf("CurrentLocation() = %q, want /new", got)
	}
	if got := hist.pushed(); len(got) != 1 || got[0] != "/new" {
		t.Errorf("history pushes = %v, want exactly [/new]", got)
	}
}

func TestRecordRedirect(t *testing.T) {
	r := newTestRouter(t,
		&RouteRecord{Path: "/old", Redirect: "/new"},
		&RouteRecord{Path: "/new"},
	)

	fail, err := r.Push(context.Background(), To("/old"))
	if err != nil || fail != nil {
		t.Fatalf("Push = (%v, %v), want success", fail, err)
	}
	if got := r.CurrentLocation().FullPath; got != "/new" {
		t.Errorf("CurrentLocation() = %q, want /new", got)
	}
}

func TestGuardAbort(t *testing.T) {
	rec := &RouteRecord{Path: "/locked"}
	rec.BeforeEnter = []Guard{func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
		return Abort(), nil
	}}
	r := newTestRouter(t, rec)

	before := r.CurrentLocation()
	fail, err := r.Push(context.Background(), To("/locked"))
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if fail == nil || fail.Kind != FailureAborted {
		t.Fatalf("failure = %v, want aborted", fail)
	}
	if r.CurrentLocation() != before {
		t.Error("aborted navigation must not change the current location")
	}
}

func TestGuardError(t *testing.T) {
	boom := errors.New("boom")
	rec := &RouteRecord{Path: "/broken"}
	rec.BeforeEnter = []Guard{func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
		return GuardOutcome{}, boom
	}}
	r := newTestRouter(t, rec)

	var handled error
	r.OnError(func(err error, to, from *Location) { handled = err })

	fail, err := r.Push(context.Background(), To("/broken"))
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if fail == nil || fail.Kind != FailureGuardError {
		t.Fatalf("failure = %v, want guard-error", fail)
	}
	if !errors.Is(fail, boom) {
		t.Error("failure must wrap the guard error")
	}
	if handled != boom {
		t.Error("guard error must be broadcast to OnError handlers")
	}
}

func TestNoMatchFailure(t *testing.T) {
	r := newTestRouter(t, &RouteRecord{Path: "/known"})

	fail, err := r.Push(context.Background(), To("/unknown"))
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if fail == nil || fail.Kind != FailureNoMatch {
		t.Fatalf("failure = %v, want no-match", fail)
	}
}

func TestGuardPhaseOrdering(t *testing.T) {
	var order []string
	mark := func(label string) Guard {
		return func(ctx context.Context, to, from *Location) (GuardOutcome, error) {
			order = append(order, label)
			return Continue(), nil
		}
	}

	alpha := &RouteRecord{Path: "alpha", BeforeLeave: []Guard{mark("leave:alpha")}}
	beta := &RouteRecord{Path: "beta", BeforeEnter: []Guard{mark("enter:beta")}}
	teams := &RouteRecord{
		Path:         "/teams/:tid",
		BeforeUpdate: []Guard{mark("update:teams")},
		Children:     []*RouteRecord{alpha, beta},
	}
	r := newTestRouter(t, teams)

	if fail, err := r.Push(context.Background(), To("/teams/1/alpha")); err != nil || fail != nil {
		t.Fatalf("setup Push = (%v, %v)", fail, err)
	}

	order = nil
	r.BeforeEach(mark("beforeEach"))
	r.BeforeResolve(mark("beforeResolve"))

	if fail, err := r.Push(context.Background(), To("/teams/2/beta")); err != nil || fail != nil {
		t.Fatalf("Push = (%v, %v)", fail, err)
	}

	want := []string{"leave:alpha", "beforeEach", "enter:beta", "update:teams", "beforeResolve"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestAfterEachObservesOutcomes(t *testing.T) {
	r := newTestRouter(t, &RouteRecord{Path: "/a"})

	var events []Event
	r.AfterEach(func(evt Event) { events = append(events, evt) })

	if fail, _ := r.Push(context.Background(), To("/a")); fail != nil {
		t.Fatalf("Push failed: %v", fail)
	}
	if fail, _ := r.Push(context.Background(), To("/a")); fail == nil || fail.Kind != FailureDuplicated {
		t.Fatalf("expected duplicated failure, got %v", fail)
	}

	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Failure != nil {
		t.Error("first event should be a committed navigation")
	}
	if events[0].Mode != "push" {
		t.Errorf("events[0].Mode = %q, want push", events[0].Mode)
	}
	if events[1].Failure == nil || events[1].Failure.Kind != FailureDuplicated {
		t.Error("second event should carry the duplicated failure")
	}
	if events[1].Sequence <= events[0].Sequence {
		t.Error("sequence ids must be strictly increasing")
	}
}

func TestUnsubscribe(t *testing.T) {
	r := newTestRouter(t, &RouteRecord{Path: "/a"}, &RouteRecord{Path: "/b"})

	var calls int
	remove := r.BeforeEach(countingGuard(&calls))

	if fail, _ := r.Push(context.Background(), To("/a")); fail != nil {
		t.Fatalf("Push failed: %v", fail)
	}
	remove()
	if fail, _ := r.Push(context.Background(), To("/b")); fail != nil {
		t.Fatalf("Push failed: %v", fail)
	}

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (guard removed before second navigation)", calls)
	}
}

func TestBackReentersPipeline(t *testing.T) {
	hist := newSpyHistory()
	r, err := New(
		WithRoutes(&RouteRecord{Path: "/a"}, &RouteRecord{Path: "/b"}, &RouteRecord{Path: "/*"}),
		WithHistory(hist),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Close()

	if fail, _ := r.Push(context.Background(), To("/a")); fail != nil {
		t.Fatalf("Push(/a) failed: %v", fail)
	}
	if fail, _ := r.Push(context.Background(), To("/b")); fail != nil {
		t.Fatalf("Push(/b) failed: %v", fail)
	}

	var events []Event
	r.AfterEach(func(evt Event) { events = append(events, evt) })

	r.Back()

	if got := r.CurrentLocation().FullPath; got != "/a" {
		t.Errorf("CurrentLocation() after Back = %q, want /a", got)
	}
	if len(events) != 1 || events[0].Mode != "replace" {
		t.Errorf("expected one replace-mode event, got %v", events)
	}
}

func TestReplaceMode(t *testing.T) {
	hist := newSpyHistory()
	r, err := New(WithRoutes(&RouteRecord{Path: "/a"}), WithHistory(hist))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Close()

	if fail, _ := r.Replace(context.Background(), To("/a")); fail != nil {
		t.Fatalf("Replace failed: %v", fail)
	}
	if len(hist.pushed()) != 0 {
		t.Error("Replace must not push a history entry")
	}
	hist.mu.Lock()
	replaces := len(hist.replaces)
	hist.mu.Unlock()
	if replaces != 1 {
		t.Errorf("replaces = %d, want 1", replaces)
	}
}

func TestAddRemoveRouteMidFlight(t *testing.T) {
	r := newTestRouter(t, &RouteRecord{Path: "/a"})

	if err := r.AddRoute(&RouteRecord{Path: "/later", Name: "later"}); err != nil {
		t.Fatalf("AddRoute returned error: %v", err)
	}
	if fail, _ := r.Push(context.Background(), To("/later")); fail != nil {
		t.Fatalf("Push(/later) failed: %v", fail)
	}

	if err := r.RemoveRoute("later"); err != nil {
		t.Fatalf("RemoveRoute returned error: %v", err)
	}
	if _, err := r.Resolve(To("/later")); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Resolve after removal error = %v, want ErrNoMatch", err)
	}
}

func TestConcurrentNavigationsSingleWinner(t *testing.T) {
	records := []*RouteRecord{
		{Path: "/p/:n"},
	}
	r := newTestRouter(t, records...)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Push(context.Background(), Target{
				Path: "/p/" + string(rune('a'+i)),
			})
		}(i)
	}

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("navigations deadlocked")
	}

	// Whatever interleaving happened, the committed location must be a
	// fully consistent value.
	loc := r.CurrentLocation()
	if loc.FullPath != loc.Path {
		t.Errorf("FullPath = %q inconsistent with Path = %q", loc.FullPath, loc.Path)
	}
	if len(loc.Matched) != 1 {
		t.Errorf("len(Matched) = %d, want 1", len(loc.Matched))
	}
}

// failingHistory rejects every write.
type failingHistory struct {
	*history.Memory
	err error
}

func (f *failingHistory) Push(string) error    { return f.err }
func (f *failingHistory) Replace(string) error { return f.err }

func TestHistoryErrorObservedByHooks(t *testing.T) {
	histErr := errors.New("storage full")
	hist := &failingHistory{Memory: history.NewMemory("/"), err: histErr}

	r, err := New(WithRoutes(&RouteRecord{Path: "/a"}), WithHistory(hist))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer r.Close()

	var events []Event
	r.AfterEach(func(evt Event) { events = append(events, evt) })

	fail, err := r.Push(context.Background(), To("/a"))
	if fail != nil {
		t.Fatalf("Push failure = %v, want nil", fail)
	}
	if !errors.Is(err, histErr) {
		t.Fatalf("Push error = %v, want %v", err, histErr)
	}
	if got := r.CurrentLocation().FullPath; got != "/" {
		t.Errorf("CurrentLocation = %q, want / (commit must not apply)", got)
	}

	if len(events) != 1 {
		t.Fatalf("hooks saw %d events, want 1", len(events))
	}
	evt := events[0]
	if evt.Failure == nil || evt.Failure.Kind != FailureAborted {
		t.Fatalf("event failure = %v, want aborted", evt.Failure)
	}
	if !errors.Is(evt.Failure, histErr) {
		t.Errorf("event failure error = %v, want %v", evt.Failure.Err, histErr)
	}
}
