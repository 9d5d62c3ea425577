package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVizorServer(t *testing.T) {
	s := NewVizorServer(VizorServerDeps{})
	require.NotNil(t, s)
	assert.NotNil(t, s.mcpServer)
	assert.NotNil(t, s.logger)
	assert.NotNil(t, s.notifier)
}

func TestToolRegistration(t *testing.T) {
	s := NewVizorServer(VizorServerDeps{})

	tools := s.mcpServer.ListTools()
	require.Len(t, tools, 5)

	expectedTools := []string{
		"vizor.render",
		"vizor.validate",
		"vizor.selection",
		"vizor.query",
		"vizor.export",
	}
	for _, name := range expectedTools {
		tool := s.mcpServer.GetTool(name)
		assert.NotNil(t, tool, "tool %s should be registered", name)
	}
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name        string
		toolName    string
		description string
	}{
		{"render", "vizor.render", "Render diagram markup onto the conversation surface"},
		{"validate", "vizor.validate", "Check diagram markup without rendering or replacing the current diagram"},
		{"selection", "vizor.selection", "Read the user's current selection as '{kind}: {label} ({id})' lines"},
		{"query", "vizor.query", "Evaluate an expression against the rendered scene (elements, selection, diagram, session)"},
		{"export", "vizor.export", "Export a diagram as SVG text or a base64-encoded PNG image"},
	}

	s := NewVizorServer(VizorServerDeps{})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := s.mcpServer.GetTool(tc.toolName)
			require.NotNil(t, tool)
			assert.Equal(t, tc.description, tool.Tool.Description)
		})
	}
}

func TestViewerResource(t *testing.T) {
	res := viewerResource()
	assert.Equal(t, "vizor://viewer", res.URI)
	assert.Equal(t, "text/html", res.MIMEType)
}
