// Package buildrequest drives the one-shot request asking an external
// endpoint to build a site that is not yet published.
package buildrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// Response is the JSON body returned by the build-trigger endpoint.
type Response struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Requester asks for a site to be built.
type Requester interface {
	RequestBuild(ctx context.Context, siteURI, zone string) error
}

// Client calls a build-trigger endpoint over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
}

var _ Requester = (*Client)(nil)

// NewClient creates a Client for the given endpoint URL. A nil httpClient
// gets a 30 second timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoint: endpoint, client: httpClient}
}

// RequestBuild issues GET <endpoint>?siteUri=...&kacheryZone=... and returns
// nil only for an ok status carrying {"success": true}. Error messages are
// meant for display: the status line for a non-ok response, the payload's
// errorMessage for a declared failure, otherwise the underlying error.
func (c *Client) RequestBuild(ctx context.Context, siteURI, zone string) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parsing build trigger endpoint: %w", err)
	}
	q := u.Query()
	q.Set("siteUri", siteURI)
	q.Set("kacheryZone", siteuri.NormalizeZone(zone))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(resp.Status)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if !body.Success {
		return errors.New(body.ErrorMessage)
	}
	return nil
}
