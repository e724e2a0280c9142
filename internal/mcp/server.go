package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/journal"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Backend is the part of the backend client the tools read from.
type Backend interface {
	ListProjects(ctx context.Context) ([]backend.ProjectSummary, error)
	GetProject(ctx context.Context, id string) (*backend.ProjectDetail, error)
	ListSlides(ctx context.Context, id string) (*backend.SlideList, error)
	GetSlide(ctx context.Context, id, slideID string) (*backend.SlideDetail, error)
	ListFiles(ctx context.Context, project string) ([]string, error)
}

// Server wraps an MCP server that exposes the generation backend as tools.
type Server struct {
	client  Backend
	journal *journal.Store
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server reading from client.
func NewServer(client Backend) *Server {
	s := &Server{client: client}

	s.mcp = server.NewMCPServer(
		"deckview",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// SetJournal enables the recent_saves tool.
func (s *Server) SetJournal(store *journal.Store) {
	s.journal = store
	s.mcp.AddTool(recentSavesTool, s.handleRecentSaves)
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listProjectsTool, s.handleListProjects)
	s.mcp.AddTool(projectStatusTool, s.handleProjectStatus)
	s.mcp.AddTool(listSlidesTool, s.handleListSlides)
	s.mcp.AddTool(getSlideTool, s.handleGetSlide)
	s.mcp.AddTool(listSlideFilesTool, s.handleListSlideFiles)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
