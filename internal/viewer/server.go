// Package viewer serves the human-facing surface: a single-page view
// of the current diagram that live-updates over SSE, plus a JSON API
// mirroring the MCP tool surface for the host UI.
package viewer

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/rendis/vizor/internal/engine"
	"github.com/rendis/vizor/internal/streaming"
	"github.com/rendis/vizor/internal/validation"
)

//go:embed static
var content embed.FS

// Deps holds the dependencies for the viewer server.
type Deps struct {
	Coordinator *engine.Coordinator
	Hub         streaming.EventHub
	Validator   validation.Validator
	Logger      *slog.Logger
}

// Server serves the viewer page and its API.
type Server struct {
	deps Deps
}

// NewServer creates a viewer server.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{deps: deps}
}

// Handler returns the HTTP handler for the viewer routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Static files, index at the root.
	staticFS, _ := fs.Sub(content, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	mux.HandleFunc("GET /{$}", s.handleIndex)

	// SSE stream.
	mux.HandleFunc("GET /sse/events", s.handleSSE)

	// Read API.
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/svg", s.handleSVG)
	mux.HandleFunc("GET /api/diagrams", s.handleDiagrams)
	mux.HandleFunc("GET /api/diagrams/{id}/export", s.handleExport)

	// Mutations.
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("POST /api/selection", s.handleSelection)
	mux.HandleFunc("DELETE /api/selection", s.handleClearSelection)
	mux.HandleFunc("POST /api/context", s.handleContext)
	mux.HandleFunc("POST /api/query", s.handleQuery)

	return mux
}

// Page returns the embedded viewer page, for serving the same surface
// over non-HTTP transports such as the MCP viewer resource.
func Page() []byte {
	page, _ := content.ReadFile("static/index.html")
	return page
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := content.ReadFile("static/index.html")
	if err != nil {
		s.deps.Logger.Error("viewer page missing", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
