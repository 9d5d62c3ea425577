package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rendis/vizor/internal/engine"
	"github.com/rendis/vizor/internal/viewer"
)

// VizorServerDeps holds the dependencies for creating a VizorServer.
type VizorServerDeps struct {
	Coordinator *engine.Coordinator
	Logger      *slog.Logger
}

// VizorServer wraps an MCP server with the diagram tool handlers.
type VizorServer struct {
	coordinator *engine.Coordinator
	sessions    *SessionRegistry
	notifier    *MCPNotifier
	logger      *slog.Logger
	mcpServer   *server.MCPServer
}

// NewVizorServer creates a new VizorServer with all 5 tools and the
// viewer resource registered.
func NewVizorServer(deps VizorServerDeps) *VizorServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &VizorServer{
		coordinator: deps.Coordinator,
		sessions:    NewSessionRegistry(),
		logger:      logger,
	}

	mcpSrv := server.NewMCPServer(
		"vizor",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Vizor renders diagram markup onto the conversation surface. Use vizor.render to display a diagram, vizor.validate to check markup without displaying it, vizor.selection to read what the user selected, vizor.query to inspect the rendered scene with cel, expr, or jq, and vizor.export to retrieve a diagram as SVG or PNG."),
	)

	mcpSrv.AddTools(s.tools()...)
	mcpSrv.AddResource(viewerResource(), s.handleViewerResource)
	s.mcpServer = mcpSrv
	s.notifier = NewMCPNotifier(mcpSrv, s.sessions)
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *VizorServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *VizorServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the 5 registered MCP tools as ServerTool entries.
func (s *VizorServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: renderTool(), Handler: s.handleRender},
		{Tool: validateTool(), Handler: s.handleValidate},
		{Tool: selectionTool(), Handler: s.handleSelection},
		{Tool: queryTool(), Handler: s.handleQuery},
		{Tool: exportTool(), Handler: s.handleExport},
	}
}

// --- Tool definitions ---

func renderTool() mcp.Tool {
	return mcp.NewTool("vizor.render",
		mcp.WithDescription("Render diagram markup onto the conversation surface"),
		mcp.WithString("markup", mcp.Required(), mcp.Description("Diagram markup, starting with a type keyword such as flowchart or sequenceDiagram")),
		mcp.WithString("title", mcp.Description("Optional diagram title")),
		mcp.WithString("theme", mcp.Enum("light", "dark"), mcp.Description("Theme override (default: current session theme)")),
	)
}

func validateTool() mcp.Tool {
	return mcp.NewTool("vizor.validate",
		mcp.WithDescription("Check diagram markup without rendering or replacing the current diagram"),
		mcp.WithString("markup", mcp.Required(), mcp.Description("Diagram markup to check")),
	)
}

func selectionTool() mcp.Tool {
	return mcp.NewTool("vizor.selection",
		mcp.WithDescription("Read the user's current selection as '{kind}: {label} ({id})' lines"),
		mcp.WithBoolean("push", mcp.Description("Also push the selection context as an MCP notification")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("vizor.query",
		mcp.WithDescription("Evaluate an expression against the rendered scene (elements, selection, diagram, session)"),
		mcp.WithString("engine", mcp.Required(),
			mcp.Enum("cel", "expr", "jq"),
			mcp.Description("Query language to use"),
		),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression to evaluate")),
	)
}

func exportTool() mcp.Tool {
	return mcp.NewTool("vizor.export",
		mcp.WithDescription("Export a diagram as SVG text or a base64-encoded PNG image"),
		mcp.WithString("format", mcp.Required(),
			mcp.Enum("svg", "png"),
			mcp.Description("Output format"),
		),
		mcp.WithString("id", mcp.Description("Diagram ID from history (default: the diagram on display)")),
	)
}

// --- Viewer resource ---

func viewerResource() mcp.Resource {
	return mcp.NewResource("vizor://viewer", "Diagram viewer page",
		mcp.WithResourceDescription("The HTML surface that displays the current diagram and live-updates over SSE"),
		mcp.WithMIMEType("text/html"),
	)
}

func (s *VizorServer) handleViewerResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "vizor://viewer",
			MIMEType: "text/html",
			Text:     string(viewer.Page()),
		},
	}, nil
}
