package viewer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rendis/vizor/internal/engine"
	"github.com/rendis/vizor/internal/store"
	"github.com/rendis/vizor/pkg/schema"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Coordinator.Session().Snapshot())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := s.deps.Coordinator.Export(r.Context(), "", "svg")
	if err != nil {
		writeVizorError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeValidated(w, r, s.deps.Validator.ValidateRender)
	if !ok {
		return
	}

	result := s.deps.Coordinator.Render(r.Context(), renderRequestFrom(req, false))
	if !result.Payload.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"payload": result.Payload,
			"error":   result.Payload.SyntaxError,
		})
		return
	}

	// The render proceeds asynchronously; the page pulls the SVG after
	// the render.completed event arrives over SSE.
	writeJSON(w, http.StatusAccepted, map[string]any{
		"payload": result.Payload,
		"token":   result.Token,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeValidated(w, r, s.deps.Validator.ValidateRender)
	if !ok {
		return
	}

	result := s.deps.Coordinator.Render(r.Context(), renderRequestFrom(req, true))
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   result.Payload.Valid(),
		"payload": result.Payload,
	})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeValidated(w, r, s.deps.Validator.ValidateSelection)
	if !ok {
		return
	}

	rectMap, _ := req["rect"].(map[string]any)
	rect := schema.Rect{
		X1: toFloat(rectMap["x1"]),
		Y1: toFloat(rectMap["y1"]),
		X2: toFloat(rectMap["x2"]),
		Y2: toFloat(rectMap["y2"]),
	}

	selected := s.deps.Coordinator.Select(r.Context(), rect)
	writeJSON(w, http.StatusOK, map[string]any{"selection": selected})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.deps.Coordinator.ClearSelection(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"selection": []schema.SelectedElement{}})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeValidated(w, r, s.deps.Validator.ValidateContext)
	if !ok {
		return
	}

	var ctxReq engine.ContextRequest
	if v, ok := req["theme"].(string); ok {
		theme := schema.Theme(v)
		ctxReq.Theme = &theme
	}
	if v, ok := req["display_mode"].(string); ok {
		mode := schema.DisplayMode(v)
		ctxReq.DisplayMode = &mode
	}
	if v, ok := req["safe_area"].(map[string]any); ok {
		ctxReq.SafeArea = &schema.SafeArea{
			Top:    toFloat(v["top"]),
			Right:  toFloat(v["right"]),
			Bottom: toFloat(v["bottom"]),
			Left:   toFloat(v["left"]),
		}
	}

	result := s.deps.Coordinator.UpdateContext(r.Context(), ctxReq)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeValidated(w, r, s.deps.Validator.ValidateQuery)
	if !ok {
		return
	}

	language, _ := req["language"].(string)
	expression, _ := req["expression"].(string)

	result, err := s.deps.Coordinator.Query(r.Context(), language, expression)
	if err != nil {
		writeVizorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *Server) handleDiagrams(w http.ResponseWriter, r *http.Request) {
	filter := store.DiagramFilter{
		Limit: queryInt(r, "limit", 50),
	}
	if v := r.URL.Query().Get("type"); v != "" {
		filter.DiagramType = schema.DiagramType(v)
	}

	diagrams, err := s.deps.Coordinator.History(r.Context(), filter)
	if err != nil {
		writeVizorError(w, err)
		return
	}
	if diagrams == nil {
		diagrams = []*store.Diagram{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagrams": diagrams})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}

	data, err := s.deps.Coordinator.Export(r.Context(), id, format)
	if err != nil {
		writeVizorError(w, err)
		return
	}

	switch format {
	case "png":
		w.Header().Set("Content-Type", "image/png")
	default:
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	_, _ = w.Write(data)
}

// decodeValidated decodes the JSON body and runs it through the given
// schema check, writing the error response itself on failure.
func (s *Server) decodeValidated(w http.ResponseWriter, r *http.Request, check func(map[string]any) error) (map[string]any, bool) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if err := check(req); err != nil {
		writeVizorError(w, err)
		return nil, false
	}
	return req, true
}

func renderRequestFrom(req map[string]any, validateOnly bool) engine.RenderRequest {
	out := engine.RenderRequest{ValidateOnly: validateOnly}
	out.Markup, _ = req["markup"].(string)
	out.Title, _ = req["title"].(string)
	if v, ok := req["theme"].(string); ok {
		out.Theme = schema.Theme(v)
	}
	if v, ok := req["validate_only"].(bool); ok && v {
		out.ValidateOnly = true
	}
	return out
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeVizorError maps a VizorError to an HTTP status by its code.
func writeVizorError(w http.ResponseWriter, err error) {
	var verr *schema.VizorError
	if !errors.As(err, &verr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch verr.Code {
	case schema.ErrCodeValidation, schema.ErrCodeEmptyMarkup, schema.ErrCodeUnrecognizedType:
		status = http.StatusBadRequest
	case schema.ErrCodeNotFound:
		status = http.StatusNotFound
	case schema.ErrCodeEngineRender, schema.ErrCodeExecution:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{"error": verr.Message, "code": verr.Code})
}

// queryInt extracts an integer query param with a default value.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// toFloat converts a decoded JSON number to float64.
func toFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}
