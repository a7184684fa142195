package route

import (
	"fmt"
	"net/url"
	"slices"
	"sync"
)

// Location is the navigation capability a Router reads from. It replaces an
// ambient global so routers can be driven deterministically.
type Location interface {
	Current() *url.URL
	// Subscribe registers fn to be called after every navigation. The
	// returned function removes the subscription.
	Subscribe(fn func(*url.URL)) (unsubscribe func())
	Navigate(path string) error
}

// MemoryLocation is an in-process Location with a history stack.
// Subscribers are called synchronously, in registration order, after the
// location has changed.
type MemoryLocation struct {
	mu      sync.Mutex
	history []*url.URL
	subs    map[int]func(*url.URL)
	nextSub int
}

var _ Location = (*MemoryLocation)(nil)

// NewMemoryLocation returns a location positioned at start.
func NewMemoryLocation(start string) (*MemoryLocation, error) {
	u, err := url.Parse(start)
	if err != nil {
		return nil, fmt.Errorf("parsing start location %q: %w", start, err)
	}
	return &MemoryLocation{
		history: []*url.URL{u},
		subs:    make(map[int]func(*url.URL)),
	}, nil
}

// Current returns a copy of the current location.
func (m *MemoryLocation) Current() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *m.history[len(m.history)-1]
	return &u
}

// Navigate pushes path onto the history and notifies subscribers.
func (m *MemoryLocation) Navigate(path string) error {
	u, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parsing location %q: %w", path, err)
	}
	m.mu.Lock()
	m.history = append(m.history, u)
	subs := m.snapshotSubs()
	m.mu.Unlock()

	for _, fn := range subs {
		cp := *u
		fn(&cp)
	}
	return nil
}

// Back pops the most recent entry. It reports false when already at the
// first entry.
func (m *MemoryLocation) Back() bool {
	m.mu.Lock()
	if len(m.history) < 2 {
		m.mu.Unlock()
		return false
	}
	m.history = m.history[:len(m.history)-1]
	u := *m.history[len(m.history)-1]
	subs := m.snapshotSubs()
	m.mu.Unlock()

	for _, fn := range subs {
		cp := u
		fn(&cp)
	}
	return true
}

// Subscribe implements Location.
func (m *MemoryLocation) Subscribe(fn func(*url.URL)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *MemoryLocation) snapshotSubs() []func(*url.URL) {
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(*url.URL), len(ids))
	for i, id := range ids {
		out[i] = m.subs[id]
	}
	return out
}
