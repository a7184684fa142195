package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveProbe(true, "", 20*time.Millisecond)
	pr.ObserveProbe(false, "ECONNREFUSED", 5*time.Millisecond)
	pr.IncBuildRequest("requested")
	pr.IncDispatch("dispatched")
	pr.SetActiveVisits(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"zenfigurl_probe_duration_seconds",
		"zenfigurl_probe_results_total",
		"zenfigurl_build_requests_total",
		"zenfigurl_workflow_dispatches_total",
		"zenfigurl_active_visits",
	} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncDispatch("failed")

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `zenfigurl_workflow_dispatches_total{outcome="failed"} 1`) {
		t.Errorf("dispatch counter missing from output:\n%s", rec.Body.String())
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveProbe(false, "EGENERIC", time.Second)
	r.IncBuildRequest("error")
	r.IncDispatch("rejected")
	r.SetActiveVisits(0)
}
