package probe

import (
	"context"
	"sync"
)

// Tracker holds the probe result for the currently resolved URL of one page
// visit. Every Check supersedes the previous one: a probe that finishes after
// a newer Check was issued is discarded.
type Tracker struct {
	checker Checker

	mu       sync.Mutex
	gen      uint64
	current  Result
	settled  bool
	onChange func(Result)
}

// NewTracker creates a Tracker using c.
func NewTracker(c Checker) *Tracker {
	return &Tracker{checker: c}
}

// OnChange registers fn to be called whenever a current probe settles.
func (t *Tracker) OnChange(fn func(Result)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Check starts a probe of siteURL. The returned channel receives the result
// and is then closed; if the probe was superseded before finishing, the
// channel is closed without a value.
func (t *Tracker) Check(ctx context.Context, siteURL string) <-chan Result {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.current = Result{URL: siteURL}
	t.settled = false
	t.mu.Unlock()

	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		res := t.checker.Probe(ctx, siteURL)

		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.current = res
		t.settled = true
		fn := t.onChange
		t.mu.Unlock()

		if fn != nil {
			fn(res)
		}
		ch <- res
	}()
	return ch
}

// Reset discards the current result and any in-flight probe.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.gen++
	t.current = Result{}
	t.settled = false
	t.mu.Unlock()
}

// State returns the latest result and whether it has settled. An unsettled
// result reports Found == false.
func (t *Tracker) State() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.settled
}
