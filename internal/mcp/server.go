// ABOUTME: MCP server setup for the fitness diaries.
// ABOUTME: Wraps the MCP server around a diary Tracker and a default user.
package mcp

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with diary access.
type Server struct {
	mcpServer *mcp.Server
	tracker   *diary.Tracker
	userID    string
	log       *log.Logger
}

// NewServer creates a new MCP server over tracker. Tools that omit user_id act for userID.
func NewServer(tracker *diary.Tracker, userID string, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fitness",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		tracker:   tracker,
		userID:    userID,
		log:       logger.With("component", "mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("serving MCP on stdio", "user", s.userID)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
