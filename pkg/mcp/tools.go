package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rendis/vizor/internal/engine"
	"github.com/rendis/vizor/internal/session"
	"github.com/rendis/vizor/pkg/schema"
)

// handleRender classifies and renders markup, replacing whatever is on
// display. Blocks until the render lands so the agent gets a definite
// answer; a request superseded mid-flight reports that instead.
func (s *VizorServer) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markup, err := req.RequireString("markup")
	if err != nil {
		return mcp.NewToolResultError("markup is required"), nil
	}

	// Capture session mapping for notifications.
	s.captureSession(ctx)

	result := s.coordinator.Render(ctx, engine.RenderRequest{
		Markup: markup,
		Title:  req.GetString("title", ""),
		Theme:  schema.Theme(req.GetString("theme", "")),
	})

	payload := result.Payload
	if !payload.Valid() {
		// The markup never reached an engine. Echo it back so the agent
		// can see what was rejected.
		return mcp.NewToolResultError(fmt.Sprintf("%s\n\nmarkup:\n%s", payload.SyntaxError, payload.Markup)), nil
	}

	select {
	case <-ctx.Done():
		return mcp.NewToolResultError(fmt.Sprintf("render interrupted: %v", ctx.Err())), nil
	case out := <-result.Done:
		if out.Discarded {
			return marshalResult(map[string]any{
				"summary": "Render superseded by a newer request",
				"payload": payload,
			})
		}
		if out.Err != nil {
			return mcp.NewToolResultError(out.Err.Message), nil
		}
	}

	return marshalResult(map[string]any{
		"summary": fmt.Sprintf("Rendered %s diagram via %s renderer", payload.DiagramType, payload.Backend),
		"payload": payload,
	})
}

// handleValidate runs the classify and gate steps without touching the
// session or the display.
func (s *VizorServer) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markup, err := req.RequireString("markup")
	if err != nil {
		return mcp.NewToolResultError("markup is required"), nil
	}

	result := s.coordinator.Render(ctx, engine.RenderRequest{Markup: markup, ValidateOnly: true})
	payload := result.Payload

	out := map[string]any{
		"valid":        payload.Valid(),
		"diagram_type": payload.DiagramType,
		"renderer":     payload.Backend,
	}
	if !payload.Valid() {
		out["error"] = payload.SyntaxError
	}
	return marshalResult(out)
}

// handleSelection reports the user's current selection as context lines.
func (s *VizorServer) handleSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.captureSession(ctx)

	text := session.SelectionContext(s.coordinator.Session().Selection())
	if text == "" {
		return mcp.NewToolResultText("No elements selected"), nil
	}

	if req.GetBool("push", false) {
		if pushErr := s.notifier.Push(ctx, text); pushErr != nil {
			s.logger.WarnContext(ctx, "selection push failed", "error", pushErr)
		}
	}
	return mcp.NewToolResultText(text), nil
}

// handleQuery evaluates an expression against the rendered scene.
func (s *VizorServer) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	engineName, err := req.RequireString("engine")
	if err != nil {
		return mcp.NewToolResultError("engine is required"), nil
	}
	expression, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError("expression is required"), nil
	}

	result, queryErr := s.coordinator.Query(ctx, engineName, expression)
	if queryErr != nil {
		return mcp.NewToolResultError(queryErr.Error()), nil
	}
	return marshalResult(map[string]any{"result": result})
}

// handleExport returns a diagram as SVG text or a base64 PNG.
func (s *VizorServer) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("format is required"), nil
	}

	data, expErr := s.coordinator.Export(ctx, req.GetString("id", ""), format)
	if expErr != nil {
		return mcp.NewToolResultError(expErr.Error()), nil
	}

	if format == "png" {
		return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// --- Internal helpers ---

// captureSession maps the MCP client session to the conversation for
// notification pushes.
func (s *VizorServer) captureSession(ctx context.Context) {
	if cs := server.ClientSessionFromContext(ctx); cs != nil {
		s.sessions.Register(cs.SessionID())
	}
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
