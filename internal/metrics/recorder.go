// Package metrics exposes observability hooks for probes, build requests and
// workflow dispatches. Components take a Recorder and default to NoopRecorder.
package metrics

import "time"

// Recorder defines the metrics hooks used across the service.
type Recorder interface {
	ObserveProbe(found bool, errClass string, d time.Duration)
	IncBuildRequest(outcome string) // requested|error
	IncDispatch(outcome string)     // dispatched|rejected|failed
	SetActiveVisits(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveProbe(bool, string, time.Duration) {}
func (NoopRecorder) IncBuildRequest(string)                  {}
func (NoopRecorder) IncDispatch(string)                      {}
func (NoopRecorder) SetActiveVisits(int)                     {}
