package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zenfigurl"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	probeDuration *prom.HistogramVec
	probeResults  *prom.CounterVec
	buildRequests *prom.CounterVec
	dispatches    *prom.CounterVec
	activeVisits  prom.Gauge
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the metrics and registers them on reg. A
// nil reg gets a fresh registry with the Go and process collectors.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	pr := &PrometheusRecorder{
		reg: reg,
		probeDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of site availability probes",
			Buckets:   prom.DefBuckets,
		}, []string{"found"}),
		probeResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "probe_results_total",
			Help:      "Site availability probe results by outcome and failure class",
		}, []string{"found", "err_class"}),
		buildRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_requests_total",
			Help:      "Build requests issued from site pages by final status",
		}, []string{"outcome"}),
		dispatches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_dispatches_total",
			Help:      "Workflow dispatch attempts by outcome",
		}, []string{"outcome"}),
		activeVisits: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "active_visits",
			Help:      "Site page visits currently held in memory",
		}),
	}
	reg.MustRegister(pr.probeDuration, pr.probeResults, pr.buildRequests, pr.dispatches, pr.activeVisits)
	return pr
}

func (p *PrometheusRecorder) ObserveProbe(found bool, errClass string, d time.Duration) {
	f := strconv.FormatBool(found)
	p.probeDuration.WithLabelValues(f).Observe(d.Seconds())
	p.probeResults.WithLabelValues(f, errClass).Inc()
}

func (p *PrometheusRecorder) IncBuildRequest(outcome string) {
	p.buildRequests.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncDispatch(outcome string) {
	p.dispatches.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetActiveVisits(n int) {
	p.activeVisits.Set(float64(n))
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
