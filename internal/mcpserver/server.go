// Package mcpserver exposes catalog search and type effectiveness as MCP tools
// over stdio.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	dexserver "github.com/bastiangx/dexpad/pkg/server"
)

const (
	// ServerName is the MCP server name
	ServerName = "dexpad"
	// ServerVersion is reported in the MCP handshake
	ServerVersion = "0.1.0"
	// DefaultLimit caps search_catalog results when no limit is given
	DefaultLimit = 20
	// MaxLimit is the largest accepted search_catalog limit
	MaxLimit = 200
)

// Server wraps the MCP server with the catalog searcher
type Server struct {
	mcp      *server.MCPServer
	searcher *dexserver.Searcher
}

// NewServer creates a new MCP server instance
func NewServer(searcher *dexserver.Searcher) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		searcher: searcher,
	}
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() error {
	s.mcp.AddTool(searchCatalogTool(), s.handleSearchCatalog)
	s.mcp.AddTool(typeEffectivenessTool(), s.handleTypeEffectiveness)
	s.mcp.AddTool(lookupSpeciesTool(), s.handleLookupSpecies)
	return nil
}
