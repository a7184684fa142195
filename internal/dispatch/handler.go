// Package dispatch serves the endpoint that turns a build request from a site
// page into a CI workflow run, and keeps a log of those attempts.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/zen-figurl/internal/logfields"
	"github.com/ziadkadry99/zen-figurl/internal/metrics"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// recentWindow is how far back a previous successful dispatch of the same
// site is reported as a duplicate.
const recentWindow = 10 * time.Minute

// Handler serves the build-trigger endpoint.
type Handler struct {
	dispatcher WorkflowDispatcher
	store      *Store
	token      string
	allowed    []string
	recorder   metrics.Recorder
}

// Options configures a Handler.
type Options struct {
	// Token authorizes workflow dispatches. Requests are rejected while empty.
	Token string
	// AllowedPatterns are doublestar globs a site URI must match. Empty
	// allows every URI.
	AllowedPatterns []string
	Recorder        metrics.Recorder
}

// NewHandler creates a Handler. store may be nil to disable the dispatch log.
func NewHandler(d WorkflowDispatcher, store *Store, opts Options) (*Handler, error) {
	for _, p := range opts.AllowedPatterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid allowed pattern %q", p)
		}
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Handler{
		dispatcher: d,
		store:      store,
		token:      opts.Token,
		allowed:    opts.AllowedPatterns,
		recorder:   rec,
	}, nil
}

// RegisterRoutes mounts the trigger endpoint under both of its names and the
// dispatch log listing.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.HandleFunc("/api/requestBuildSite", h.handleRequest)
	r.HandleFunc("/api/requestPrepareSite", h.handleRequest)
	r.Get("/api/dispatches", h.handleList)
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid method", http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	siteURI := q.Get("siteUri")
	if siteURI == "" {
		http.Error(w, "Missing siteUri", http.StatusBadRequest)
		return
	}
	zone := siteuri.NormalizeZone(q.Get("kacheryZone"))
	rec := Record{SiteURI: siteURI, KacheryZone: zone, RemoteAddr: r.RemoteAddr}

	if h.token == "" {
		h.finish(r.Context(), rec, OutcomeRejected, "Missing github token", 0)
		http.Error(w, "Missing github token", http.StatusBadRequest)
		return
	}
	if !h.isAllowed(siteURI) {
		h.finish(r.Context(), rec, OutcomeRejected, "Unsupported siteUri", 0)
		http.Error(w, "Unsupported siteUri", http.StatusBadRequest)
		return
	}

	h.warnIfRecent(r.Context(), siteURI)

	status, err := h.dispatcher.DispatchWorkflow(r.Context(), h.token, siteURI, zone)
	if err != nil {
		msg := "Error: " + err.Error()
		h.finish(r.Context(), rec, OutcomeFailed, msg, status)
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}
	if status != http.StatusNoContent {
		msg := fmt.Sprintf("Error triggering workflow: %d %s", status, http.StatusText(status))
		h.finish(r.Context(), rec, OutcomeFailed, msg, status)
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}

	h.finish(r.Context(), rec, OutcomeDispatched, "", status)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, []Record{})
		return
	}
	q := r.URL.Query()
	filter := ListFilter{
		SiteURI: q.Get("site"),
		Outcome: Outcome(q.Get("outcome")),
		Limit:   50,
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	records, err := h.store.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) isAllowed(siteURI string) bool {
	if len(h.allowed) == 0 {
		return true
	}
	for _, p := range h.allowed {
		if ok, _ := doublestar.Match(p, siteURI); ok {
			return true
		}
	}
	return false
}

func (h *Handler) warnIfRecent(ctx context.Context, siteURI string) {
	if h.store == nil {
		return
	}
	n, err := h.store.CountSince(ctx, siteURI, OutcomeDispatched, time.Now().Add(-recentWindow))
	if err != nil || n == 0 {
		return
	}
	slog.Warn("Site was dispatched recently; dispatching again",
		logfields.SiteURI(siteURI),
		slog.Int("recent_dispatches", n))
}

// finish records the attempt in metrics, logs and the dispatch log. Failures
// to persist are logged and otherwise ignored.
func (h *Handler) finish(ctx context.Context, rec Record, outcome Outcome, msg string, status int) {
	rec.Outcome = outcome
	rec.Message = msg
	rec.GitHubStatus = status
	h.recorder.IncDispatch(string(outcome))

	if h.store != nil {
		stored, err := h.store.Log(ctx, rec)
		if err != nil {
			slog.Error("Failed to log dispatch", logfields.SiteURI(rec.SiteURI), logfields.Error(err))
		} else {
			rec = stored
		}
	}

	attrs := []any{
		logfields.DispatchID(rec.ID),
		logfields.SiteURI(rec.SiteURI),
		logfields.KacheryZone(rec.KacheryZone),
		logfields.Status(string(outcome)),
		logfields.HTTPStatus(status),
	}
	if outcome == OutcomeDispatched {
		slog.Info("Workflow dispatched", attrs...)
		return
	}
	slog.Warn("Workflow dispatch not completed", append(attrs, slog.String("message", msg))...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
