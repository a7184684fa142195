// Package probe checks whether a built site is published at its resolved URL.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bassosimone/errclass"

	"github.com/ziadkadry99/zen-figurl/internal/logfields"
	"github.com/ziadkadry99/zen-figurl/internal/metrics"
)

// DefaultTimeout bounds a single probe when no client is supplied.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of a probe. Found is false for any non-ok status and
// for every transport failure; ErrClass then names the failure for logs.
type Result struct {
	URL        string `json:"url"`
	Found      bool   `json:"found"`
	StatusCode int    `json:"status_code,omitempty"`
	ErrClass   string `json:"err_class,omitempty"`
}

// Checker performs a single existence check.
type Checker interface {
	Probe(ctx context.Context, siteURL string) Result
}

// Prober issues HEAD requests against <siteURL>/index.html.
type Prober struct {
	client   *http.Client
	recorder metrics.Recorder
}

var _ Checker = (*Prober)(nil)

// NewProber creates a Prober. A nil client gets one with DefaultTimeout.
func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Prober{client: client, recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder.
func (p *Prober) WithRecorder(r metrics.Recorder) *Prober {
	if r != nil {
		p.recorder = r
	}
	return p
}

// IndexURL returns the URL probed for siteURL.
func IndexURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/index.html"
}

// Probe implements Checker. It never returns an error: failures are reported
// as not found.
func (p *Prober) Probe(ctx context.Context, siteURL string) Result {
	start := time.Now()
	res := p.probe(ctx, siteURL)
	elapsed := time.Since(start)

	p.recorder.ObserveProbe(res.Found, res.ErrClass, elapsed)
	slog.Debug("Site probe finished",
		logfields.SiteURL(siteURL),
		slog.Bool("found", res.Found),
		logfields.HTTPStatus(res.StatusCode),
		logfields.ErrClass(res.ErrClass),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return res
}

func (p *Prober) probe(ctx context.Context, siteURL string) Result {
	res := Result{URL: siteURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, IndexURL(siteURL), nil)
	if err != nil {
		res.ErrClass = errclass.New(fmt.Errorf("creating probe request: %w", err))
		return res
	}

	resp, err := p.client.Do(req)
	if err != nil {
		res.ErrClass = errclass.New(err)
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.Found = resp.StatusCode >= 200 && resp.StatusCode < 400
	return res
}
