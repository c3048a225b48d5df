// Package mcp exposes the CFD reconstruction as Model Context Protocol tools
// served over stdio.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/config"
	"jira-cfd/internal/eventlog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const (
	serverName = "jira-cfd"
	toolCount  = 3
)

// ServerDeps holds the collaborators of the MCP server.
type ServerDeps struct {
	// Provider serves cached histories and hydrates new sources.
	Provider *eventlog.LogProvider
	// Workflow sets the column order of built tables.
	Workflow config.Workflow
	// EmptyHistory is the default policy when a call does not ask to skip.
	EmptyHistory cfd.Policy
	// Mermaid attaches charts to build_cfd responses by default.
	Mermaid bool
	// Version is reported to clients.
	Version string
}

// Server wraps the MCP SDK server with the CFD tool registrations.
type Server struct {
	inner *mcpsdk.Server
	deps  ServerDeps
	now   func() time.Time

	mu    sync.RWMutex
	tools []string
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(deps ServerDeps) *Server {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	if deps.Workflow.InitialStatus == "" {
		deps.Workflow = config.DefaultWorkflow()
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: deps.Version,
		},
		&mcpsdk.ServerOptions{},
	)

	s := &Server{
		inner: inner,
		deps:  deps,
		now:   time.Now,
		tools: make([]string, 0, toolCount),
	}
	s.registerTools()
	return s
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)
	return names
}

// Run serves on stdio until the context is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Strs("tools", s.ListToolNames()).Msg("MCP server listening on stdio")
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.inner.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameBuildCFD,
		Description: buildCFDDescription,
	}, s.handleBuildCFD)
	s.trackTool(ToolNameBuildCFD)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameItemHistory,
		Description: itemHistoryDescription,
	}, s.handleItemHistory)
	s.trackTool(ToolNameItemHistory)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListSources,
		Description: listSourcesDescription,
	}, s.handleListSources)
	s.trackTool(ToolNameListSources)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append(s.tools, name)
}
