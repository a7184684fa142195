package page

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/ziadkadry99/zen-figurl/internal/logfields"
	"github.com/ziadkadry99/zen-figurl/internal/metrics"
)

// Store keeps live visits in memory until they have been idle for the TTL.
type Store struct {
	deps Deps
	ttl  time.Duration
	now  func() time.Time

	mu     sync.Mutex
	visits map[string]*Visit
}

// NewStore creates an empty visit store.
func NewStore(deps Deps, ttl time.Duration) *Store {
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	return &Store{
		deps:   deps,
		ttl:    ttl,
		now:    time.Now,
		visits: make(map[string]*Visit),
	}
}

// Create starts a visit at the given location (path and query).
func (s *Store) Create(start string) (*Visit, error) {
	v, err := newVisit(uuid.New().String(), start, s.deps, s.now())
	if err != nil {
		return nil, fmt.Errorf("creating visit: %w", err)
	}
	s.mu.Lock()
	s.visits[v.ID] = v
	n := len(s.visits)
	s.mu.Unlock()
	s.deps.Recorder.SetActiveVisits(n)
	return v, nil
}

// Get returns a visit and marks it as recently used.
func (s *Store) Get(id string) (*Visit, bool) {
	s.mu.Lock()
	v, ok := s.visits[id]
	s.mu.Unlock()
	if ok {
		v.touch(s.now())
	}
	return v, ok
}

// Len returns the number of live visits.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visits)
}

// Prune closes and removes visits idle for longer than the TTL and returns
// how many were removed.
func (s *Store) Prune() int {
	cutoff := s.now().Add(-s.ttl)
	var expired []*Visit

	s.mu.Lock()
	for id, v := range s.visits {
		if v.idleSince().Before(cutoff) {
			expired = append(expired, v)
			delete(s.visits, id)
		}
	}
	n := len(s.visits)
	s.mu.Unlock()

	for _, v := range expired {
		v.close()
	}
	if len(expired) > 0 {
		slog.Info("Pruned idle visits", slog.Int("count", len(expired)), slog.Int("active", n))
	}
	s.deps.Recorder.SetActiveVisits(n)
	return len(expired)
}

// Close removes every visit.
func (s *Store) Close() {
	s.mu.Lock()
	visits := s.visits
	s.visits = make(map[string]*Visit)
	s.mu.Unlock()
	for _, v := range visits {
		v.close()
	}
	s.deps.Recorder.SetActiveVisits(0)
}

// Pruner runs Store.Prune on a schedule.
type Pruner struct {
	scheduler gocron.Scheduler
}

// StartPruner schedules Prune every interval and starts the scheduler.
func (s *Store) StartPruner(interval time.Duration) (*Pruner, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.Prune() }),
		gocron.WithName("visit-prune"),
	); err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to create visit prune job: %w", err)
	}
	sched.Start()
	slog.Info("Visit pruning scheduled",
		logfields.DurationMS(float64(interval.Milliseconds())),
		slog.Duration("ttl", s.ttl))
	return &Pruner{scheduler: sched}, nil
}

// Stop shuts the scheduler down.
func (p *Pruner) Stop() error {
	return p.scheduler.Shutdown()
}
