package buildrequest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ziadkadry99/zen-figurl/internal/logfields"
	"github.com/ziadkadry99/zen-figurl/internal/metrics"
)

// Status is the state of a page visit's build request.
type Status string

const (
	StatusNone       Status = "none"
	StatusRequesting Status = "requesting"
	StatusRequested  Status = "requested"
	StatusError      Status = "error"
)

// Snapshot is a point-in-time view of a Workflow.
type Snapshot struct {
	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Workflow is the build-request state machine of a single page visit:
// none -> requesting -> requested | error. Nothing here stops a caller from
// triggering again; the page only hides the button once requested.
type Workflow struct {
	requester Requester
	siteURI   string
	zone      string
	recorder  metrics.Recorder

	mu       sync.Mutex
	snap     Snapshot
	onChange func(Snapshot)
}

// NewWorkflow creates a workflow in StatusNone for the given site.
func NewWorkflow(r Requester, siteURI, zone string) *Workflow {
	return &Workflow{
		requester: r,
		siteURI:   siteURI,
		zone:      zone,
		recorder:  metrics.NoopRecorder{},
		snap:      Snapshot{Status: StatusNone},
	}
}

// WithRecorder sets the metrics recorder.
func (w *Workflow) WithRecorder(r metrics.Recorder) *Workflow {
	if r != nil {
		w.recorder = r
	}
	return w
}

// OnChange registers fn to be called after every state transition.
func (w *Workflow) OnChange(fn func(Snapshot)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// Trigger enters StatusRequesting before returning, then performs the request
// in the background. The returned channel is closed once the workflow has
// reached StatusRequested or StatusError.
func (w *Workflow) Trigger(ctx context.Context) <-chan struct{} {
	w.set(Snapshot{Status: StatusRequesting})

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := w.requester.RequestBuild(ctx, w.siteURI, w.zone)
		if err != nil {
			slog.Warn("Problem requesting build site",
				logfields.SiteURI(w.siteURI),
				logfields.KacheryZone(w.zone),
				logfields.Error(err))
			w.recorder.IncBuildRequest(string(StatusError))
			w.set(Snapshot{Status: StatusError, ErrorMessage: err.Error()})
			return
		}
		slog.Info("Build site requested", logfields.SiteURI(w.siteURI), logfields.KacheryZone(w.zone))
		w.recorder.IncBuildRequest(string(StatusRequested))
		w.set(Snapshot{Status: StatusRequested})
	}()
	return done
}

func (w *Workflow) set(s Snapshot) {
	w.mu.Lock()
	w.snap = s
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
