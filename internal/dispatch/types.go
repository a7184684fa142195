package dispatch

import "time"

// Outcome classifies a dispatch attempt.
type Outcome string

const (
	OutcomeDispatched Outcome = "dispatched"
	OutcomeRejected   Outcome = "rejected"
	OutcomeFailed     Outcome = "failed"
)

// Record is one logged dispatch attempt.
type Record struct {
	ID           string    `json:"id"`
	SiteURI      string    `json:"site_uri"`
	KacheryZone  string    `json:"kachery_zone"`
	Outcome      Outcome   `json:"outcome"`
	Message      string    `json:"message,omitempty"`
	GitHubStatus int       `json:"github_status,omitempty"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListFilter controls which records List returns.
type ListFilter struct {
	SiteURI string
	Outcome Outcome
	Limit   int
}
