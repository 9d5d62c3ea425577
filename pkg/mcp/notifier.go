package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/server"
)

// SelectionNotifier pushes selection context to the connected client.
type SelectionNotifier interface {
	Push(ctx context.Context, text string) error
}

// MCPNotifier implements SelectionNotifier using MCP message notifications.
type MCPNotifier struct {
	mcpServer *server.MCPServer
	sessions  *SessionRegistry
}

// NewMCPNotifier creates a notifier that pushes via MCP notifications.
func NewMCPNotifier(mcpServer *server.MCPServer, sessions *SessionRegistry) *MCPNotifier {
	return &MCPNotifier{mcpServer: mcpServer, sessions: sessions}
}

// Push sends the selection context to the connected client's session.
// Best-effort: returns nil if no client is connected.
func (n *MCPNotifier) Push(_ context.Context, text string) error {
	sessionID, ok := n.sessions.Current()
	if !ok {
		return nil // no client connected, best-effort
	}
	err := n.mcpServer.SendNotificationToSpecificClient(sessionID, "notifications/message", map[string]any{
		"level": "info",
		"data":  text,
	})
	if errors.Is(err, server.ErrSessionNotFound) {
		// Session expired between lookup and send, not an error.
		n.sessions.Remove(sessionID)
		return nil
	}
	return err
}
