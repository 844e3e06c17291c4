// ABOUTME: MCP server initialization and configuration for diary.
// ABOUTME: Sets up server with entry tools for AI agent access.
package mcp

import (
	"context"
	"fmt"
	"sync"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/diary/internal/diary"
	"github.com/2389-research/diary/internal/logging"
)

// Server wraps the MCP server around a diary controller.
type Server struct {
	mcp  *gomcp.Server
	ctrl *diary.Controller
	log  logging.Logger

	// writeMu serializes SetForm+Submit pairs from concurrent tool calls.
	writeMu sync.Mutex
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithLogger sets the logger used for tool diagnostics.
func WithLogger(log logging.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates an MCP server exposing the diary entries.
func NewServer(ctrl *diary.Controller, opts ...ServerOption) (*Server, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("diary controller is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "diary",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:  mcpServer,
		ctrl: ctrl,
		log:  logging.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "mcp")

	s.registerEntryTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info(ctx, "serving diary tools over stdio")
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
