package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/zen-figurl/internal/page"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// siteReport is the JSON body returned by the site tools.
type siteReport struct {
	SiteURI     string `json:"site_uri"`
	KacheryZone string `json:"kachery_zone"`
	Valid       bool   `json:"valid"`
	URL         string `json:"url,omitempty"`
	Checked     bool   `json:"checked,omitempty"`
	Found       bool   `json:"found,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	ErrClass    string `json:"err_class,omitempty"`
	Message     string `json:"message,omitempty"`
}

// handleResolveSiteURI resolves a site URI without touching the network.
func (s *Server) handleResolveSiteURI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := s.resolve(request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report)
}

// handleCheckSite resolves a site URI and probes the hosted site.
func (s *Server) handleCheckSite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := s.resolve(request)
	if errResult != nil {
		return errResult, nil
	}
	if !report.Valid {
		return mcp.NewToolResultError("Invalid site URI: " + report.SiteURI), nil
	}

	res := s.checker.Probe(ctx, report.URL)
	report.Checked = true
	report.Found = res.Found
	report.StatusCode = res.StatusCode
	report.ErrClass = res.ErrClass
	return jsonResult(report)
}

// handleRequestSiteBuild asks the build-trigger endpoint to build a site.
// Published sites are skipped unless force is set.
func (s *Server) handleRequestSiteBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := s.resolve(request)
	if errResult != nil {
		return errResult, nil
	}
	if !report.Valid {
		return mcp.NewToolResultError("Invalid site URI: " + report.SiteURI), nil
	}

	if !request.GetBool("force", false) {
		res := s.checker.Probe(ctx, report.URL)
		report.Checked = true
		report.Found = res.Found
		report.StatusCode = res.StatusCode
		if res.Found {
			report.Message = "Site is already published; no build requested."
			return jsonResult(report)
		}
	}

	if err := s.requester.RequestBuild(ctx, report.SiteURI, report.KacheryZone); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", page.MessageError, err)), nil
	}
	report.Message = page.MessageRequested
	return jsonResult(report)
}

func (s *Server) resolve(request mcp.CallToolRequest) (siteReport, *mcp.CallToolResult) {
	uri, err := request.RequireString("site_uri")
	if err != nil {
		return siteReport{}, mcp.NewToolResultError("missing required parameter: site_uri")
	}
	zone := request.GetString("kachery_zone", "")
	res := s.resolver.Resolve(uri, zone)
	return siteReport{
		SiteURI:     uri,
		KacheryZone: siteuri.NormalizeZone(zone),
		Valid:       res.Valid,
		URL:         res.URL,
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
