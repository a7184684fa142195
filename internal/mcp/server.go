package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/zen-figurl/internal/buildrequest"
	"github.com/ziadkadry99/zen-figurl/internal/probe"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes site resolution, availability and
// build request tools.
type Server struct {
	resolver  siteuri.Resolver
	checker   probe.Checker
	requester buildrequest.Requester
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(resolver siteuri.Resolver, checker probe.Checker, requester buildrequest.Requester) *Server {
	s := &Server{
		resolver:  resolver,
		checker:   checker,
		requester: requester,
	}

	s.mcp = server.NewMCPServer(
		"zenfigurl",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(resolveSiteURITool, s.handleResolveSiteURI)
	s.mcp.AddTool(checkSiteTool, s.handleCheckSite)
	s.mcp.AddTool(requestSiteBuildTool, s.handleRequestSiteBuild)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
