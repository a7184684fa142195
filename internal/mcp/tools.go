package mcp

import "github.com/mark3labs/mcp-go/mcp"

// resolveSiteURITool defines the resolve_site_uri MCP tool.
var resolveSiteURITool = mcp.NewTool("resolve_site_uri",
	mcp.WithDescription("Resolve a site URI (sha1://, zenodo://, zenodo-sandbox://) to the URL where the built site is hosted."),
	mcp.WithString("site_uri",
		mcp.Required(),
		mcp.Description("Site URI to resolve"),
	),
	mcp.WithString("kachery_zone",
		mcp.Description("Kachery zone for sha1:// URIs (default \"default\")"),
	),
)

// checkSiteTool defines the check_site MCP tool.
var checkSiteTool = mcp.NewTool("check_site",
	mcp.WithDescription("Check whether the site for a site URI has been built and published."),
	mcp.WithString("site_uri",
		mcp.Required(),
		mcp.Description("Site URI to check"),
	),
	mcp.WithString("kachery_zone",
		mcp.Description("Kachery zone for sha1:// URIs (default \"default\")"),
	),
)

// requestSiteBuildTool defines the request_site_build MCP tool.
var requestSiteBuildTool = mcp.NewTool("request_site_build",
	mcp.WithDescription("Ask CI to build the site for a site URI. Submit the request once; builds take a few minutes."),
	mcp.WithString("site_uri",
		mcp.Required(),
		mcp.Description("Site URI to build"),
	),
	mcp.WithString("kachery_zone",
		mcp.Description("Kachery zone for sha1:// URIs (default \"default\")"),
	),
	mcp.WithBoolean("force",
		mcp.Description("Request a build even if the site is already published"),
	),
)
