package dispatch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

// WorkflowDispatcher starts a CI workflow run for a site. It returns the HTTP
// status the CI system answered with, or 0 when no response was received.
type WorkflowDispatcher interface {
	DispatchWorkflow(ctx context.Context, token, siteURI, zone string) (int, error)
}

// GitHubConfig names the workflow to dispatch.
type GitHubConfig struct {
	Owner    string
	Repo     string
	Workflow string // workflow file name, e.g. prepare-site.yml
	Branch   string
	APIURL   string // empty for api.github.com
}

// GitHubDispatcher dispatches workflow runs through the GitHub Actions API.
type GitHubDispatcher struct {
	cfg     GitHubConfig
	baseURL *url.URL
}

var _ WorkflowDispatcher = (*GitHubDispatcher)(nil)

// NewGitHubDispatcher validates cfg and returns a dispatcher.
func NewGitHubDispatcher(cfg GitHubConfig) (*GitHubDispatcher, error) {
	if cfg.Owner == "" || cfg.Repo == "" || cfg.Workflow == "" || cfg.Branch == "" {
		return nil, fmt.Errorf("github dispatch requires owner, repo, workflow and branch")
	}
	d := &GitHubDispatcher{cfg: cfg}
	if cfg.APIURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing github api url: %w", err)
		}
		d.baseURL = u
	}
	return d, nil
}

// Config returns the dispatcher's workflow coordinates.
func (d *GitHubDispatcher) Config() GitHubConfig { return d.cfg }

// DispatchWorkflow implements WorkflowDispatcher.
func (d *GitHubDispatcher) DispatchWorkflow(ctx context.Context, token, siteURI, zone string) (int, error) {
	client := github.NewClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
	})))
	if d.baseURL != nil {
		client.BaseURL = d.baseURL
	}

	event := github.CreateWorkflowDispatchEventRequest{
		Ref: d.cfg.Branch,
		Inputs: map[string]interface{}{
			"siteUri":     siteURI,
			"kacheryZone": zone,
		},
	}
	resp, err := client.Actions.CreateWorkflowDispatchEventByFileName(ctx, d.cfg.Owner, d.cfg.Repo, d.cfg.Workflow, event)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return status, err
}
