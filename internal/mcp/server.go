package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/vizlab/internal/assist"
	"github.com/ziadkadry99/vizlab/internal/render"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the collaborators the tools run against.
type Deps struct {
	// Assistant may be nil; the AI tools then report that no provider is
	// configured.
	Assistant *assist.Assistant
	Renderer  render.Renderer
	Defaults  render.Options
	PNGScale  float64
}

// Server wraps an MCP server that exposes the diagram flows and renderer.
type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"vizlab",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateDiagramTool, s.handleGenerateDiagram)
	s.mcp.AddTool(repairDiagramTool, s.handleRepairDiagram)
	s.mcp.AddTool(suggestCompletionsTool, s.handleSuggestCompletions)
	s.mcp.AddTool(renderDiagramTool, s.handleRenderDiagram)
	s.mcp.AddTool(listOptionsTool, s.handleListOptions)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
