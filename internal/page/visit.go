package page

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ziadkadry99/zen-figurl/internal/buildrequest"
	"github.com/ziadkadry99/zen-figurl/internal/logfields"
	"github.com/ziadkadry99/zen-figurl/internal/metrics"
	"github.com/ziadkadry99/zen-figurl/internal/probe"
	"github.com/ziadkadry99/zen-figurl/internal/route"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// ErrNoBuild is returned when a build is requested while the visit is not
// showing the not-found view.
var ErrNoBuild = errors.New("page is not offering a site build")

// Deps are the collaborators shared by all visits.
type Deps struct {
	Resolver  siteuri.Resolver
	Checker   probe.Checker
	Requester buildrequest.Requester
	Recorder  metrics.Recorder
}

// Visit is one page instance: its own location, probe and build request.
// Navigating to a different site starts a fresh build request in StatusNone.
type Visit struct {
	ID string

	deps    Deps
	loc     *route.MemoryLocation
	router  *route.Router
	tracker *probe.Tracker
	ctx     context.Context
	cancel  context.CancelFunc
	unsub   func()

	mu        sync.Mutex
	rt        route.Route
	resolved  siteuri.Resolved
	workflow  *buildrequest.Workflow
	probeDone <-chan probe.Result
	lastSeen  time.Time

	watchMu  sync.Mutex
	watchers map[chan View]struct{}
	closed   bool
}

func newVisit(id, start string, deps Deps, now time.Time) (*Visit, error) {
	loc, err := route.NewMemoryLocation(start)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	v := &Visit{
		ID:       id,
		deps:     deps,
		loc:      loc,
		router:   route.NewRouter(loc),
		tracker:  probe.NewTracker(deps.Checker),
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: now,
		watchers: make(map[chan View]struct{}),
	}
	v.tracker.OnChange(func(probe.Result) { v.notify() })
	v.apply(v.router.Route())
	v.unsub = v.router.OnChange(v.apply)
	return v, nil
}

// apply moves the visit to rt: resolve, reset the build request when the
// site changed, and start a probe that supersedes any in-flight one.
func (v *Visit) apply(rt route.Route) {
	v.mu.Lock()
	prev := v.rt
	v.rt = rt

	if !rt.IsSite() {
		v.resolved = siteuri.Resolved{}
		v.tracker.Reset()
		v.probeDone = closedResult()
		v.mu.Unlock()
		v.notify()
		return
	}

	v.resolved = v.deps.Resolver.Resolve(rt.SiteURI, rt.KacheryZone)
	sameSite := prev.IsSite() && prev.SiteURI == rt.SiteURI &&
		siteuri.NormalizeZone(prev.KacheryZone) == siteuri.NormalizeZone(rt.KacheryZone)
	if v.workflow == nil || !sameSite {
		wf := buildrequest.NewWorkflow(v.deps.Requester, rt.SiteURI, rt.KacheryZone).WithRecorder(v.deps.Recorder)
		wf.OnChange(func(buildrequest.Snapshot) { v.notify() })
		v.workflow = wf
	}

	if v.resolved.Valid {
		v.probeDone = v.tracker.Check(v.ctx, v.resolved.URL)
	} else {
		slog.Info("Invalid site URI", logfields.VisitID(v.ID), logfields.SiteURI(rt.SiteURI))
		v.tracker.Reset()
		v.probeDone = closedResult()
	}
	v.mu.Unlock()
	v.notify()
}

// Route returns the visit's current route.
func (v *Visit) Route() route.Route {
	return v.router.Route()
}

// View composes the current state of the visit.
func (v *Visit) View() View {
	v.mu.Lock()
	rt, resolved, wf := v.rt, v.resolved, v.workflow
	v.mu.Unlock()

	return ComposeMain(rt, func() View {
		res, settled := v.tracker.State()
		found := settled && res.Found && res.URL == resolved.URL
		view := Compose(rt, resolved, found, wf.Snapshot())
		view.Checking = resolved.Valid && !settled
		return view
	})
}

// WaitProbe blocks until the current probe settles or ctx is done.
func (v *Visit) WaitProbe(ctx context.Context) {
	v.mu.Lock()
	done := v.probeDone
	v.mu.Unlock()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Build triggers the build request. The returned channel closes when the
// request settles.
func (v *Visit) Build(ctx context.Context) (<-chan struct{}, error) {
	if v.View().Kind != KindNotFound {
		return nil, ErrNoBuild
	}
	v.mu.Lock()
	wf := v.workflow
	v.mu.Unlock()
	return wf.Trigger(ctx), nil
}

// Navigate moves the visit to rt.
func (v *Visit) Navigate(rt route.Route) error {
	return v.router.SetRoute(rt)
}

// Back returns to the previous location. It reports false at the first entry.
func (v *Visit) Back() bool {
	return v.loc.Back()
}

// Watch returns a channel that receives the latest view after every change.
// Slow readers only see the most recent view.
func (v *Visit) Watch() (<-chan View, func()) {
	ch := make(chan View, 1)
	v.watchMu.Lock()
	if v.closed {
		v.watchMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	v.watchers[ch] = struct{}{}
	v.watchMu.Unlock()

	return ch, func() {
		v.watchMu.Lock()
		defer v.watchMu.Unlock()
		if _, ok := v.watchers[ch]; ok {
			delete(v.watchers, ch)
			close(ch)
		}
	}
}

func (v *Visit) notify() {
	view := v.View()
	v.watchMu.Lock()
	defer v.watchMu.Unlock()
	for ch := range v.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

func (v *Visit) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visit) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// close stops in-flight probes and ends all watches.
func (v *Visit) close() {
	v.cancel()
	v.unsub()
	v.watchMu.Lock()
	defer v.watchMu.Unlock()
	v.closed = true
	for ch := range v.watchers {
		delete(v.watchers, ch)
		close(ch)
	}
}

func closedResult() <-chan probe.Result {
	ch := make(chan probe.Result)
	close(ch)
	return ch
}
