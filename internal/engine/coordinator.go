// Package engine coordinates the full request flow shared by the MCP
// tools and the HTTP viewer: classification, the syntax gate, backend
// selection, pipeline submission, selection, host context, queries,
// and export. Both surfaces stay thin; the rules live here once.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/vizor/internal/backend"
	"github.com/rendis/vizor/internal/classify"
	"github.com/rendis/vizor/internal/logging"
	"github.com/rendis/vizor/internal/query"
	"github.com/rendis/vizor/internal/render"
	"github.com/rendis/vizor/internal/renderer"
	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/internal/selection"
	"github.com/rendis/vizor/internal/session"
	"github.com/rendis/vizor/internal/store"
	"github.com/rendis/vizor/pkg/schema"
)

// Capabilities declares what the host surface supports. Requests for
// an unsupported capability are logged and ignored, never failed.
type Capabilities struct {
	Fullscreen bool
}

// RenderRequest is one render or validate-only submission.
type RenderRequest struct {
	Markup       string
	Title        string
	Theme        schema.Theme // optional override; empty keeps the session theme
	ValidateOnly bool
}

// RenderResult reports the synchronous part of a render: the payload
// (carrying any syntax error) plus, for accepted renders, the request
// token and outcome channel.
type RenderResult struct {
	Payload *schema.DiagramPayload
	Token   uint64
	Done    <-chan render.Outcome
}

// ContextRequest is a host context update. Nil fields are unchanged.
type ContextRequest struct {
	Theme       *schema.Theme
	DisplayMode *schema.DisplayMode
	SafeArea    *schema.SafeArea
}

// ContextResult reports what a context update actually did.
type ContextResult struct {
	Rerendered bool     `json:"rerendered"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Coordinator wires the session, pipeline, store, and query engines
// into one request-facing service.
type Coordinator struct {
	session   *session.Session
	pipeline  *render.Pipeline
	container *scene.Container
	store     store.Store
	runner    *query.Runner
	primary   *renderer.GraphvizRenderer
	caps      Capabilities
	logger    *slog.Logger
}

// NewCoordinator creates a coordinator over the given collaborators.
// store may be nil to disable history persistence.
func NewCoordinator(
	sess *session.Session,
	pipeline *render.Pipeline,
	container *scene.Container,
	st store.Store,
	runner *query.Runner,
	primary *renderer.GraphvizRenderer,
	caps Capabilities,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		session:   sess,
		pipeline:  pipeline,
		container: container,
		store:     st,
		runner:    runner,
		primary:   primary,
		caps:      caps,
		logger:    logger,
	}
}

// Session exposes the coordinated session for read access.
func (c *Coordinator) Session() *session.Session { return c.session }

// Render runs the synchronous half of a render request: classify the
// markup, apply the syntax gate, pick the backend, and build the
// payload. Gated payloads and validate-only requests stop there; the
// rest are installed as the session payload and submitted to the
// pipeline.
func (c *Coordinator) Render(ctx context.Context, req RenderRequest) *RenderResult {
	ctx = logging.WithSessionID(ctx, c.session.ID())

	if req.Theme != "" {
		c.session.SetTheme(ctx, req.Theme)
	}

	payload := &schema.DiagramPayload{
		ID:          uuid.New().String(),
		Markup:      req.Markup,
		Title:       req.Title,
		DiagramType: classify.Classify(req.Markup),
		CreatedAt:   time.Now().UTC(),
	}

	if gateErr := classify.Check(req.Markup); gateErr != nil {
		payload.SyntaxError = gateErr.Message
		payload.Backend = schema.BackendNone
		return &RenderResult{Payload: payload}
	}
	payload.Backend = backend.Select(payload.DiagramType)

	if req.ValidateOnly {
		return &RenderResult{Payload: payload}
	}

	c.session.SetPayload(payload)
	c.pipeline.SyncSelection(nil)
	c.saveDiagram(ctx, payload)

	token, done := c.pipeline.Submit(ctx, payload, c.session.Theme())

	// Persist the outcome without holding up the caller.
	persisted := make(chan render.Outcome, 1)
	go func() {
		out := <-done
		c.persistOutcome(ctx, payload, out)
		persisted <- out
	}()

	return &RenderResult{Payload: payload, Token: token, Done: persisted}
}

// Select resolves a drag rectangle against the current tree, installs
// the highlight markers, and updates the session selection.
func (c *Coordinator) Select(ctx context.Context, rect schema.Rect) []schema.SelectedElement {
	selected := selection.Select(rect, c.container.Tree())
	if selected == nil {
		// Sub-threshold drag: existing selection stays untouched.
		return c.session.Selection()
	}
	c.pipeline.SyncSelection(selected)
	c.session.SetSelection(ctx, selected)
	return selected
}

// ClearSelection empties the selection and removes all highlights.
func (c *Coordinator) ClearSelection(ctx context.Context) {
	c.pipeline.SyncSelection(nil)
	c.session.ClearSelection(ctx)
}

// UpdateContext applies a host context event. A theme change re-renders
// the current payload under the new palette, subject to the pipeline's
// usual last-request-wins discipline. Unsupported display modes are
// logged as warnings and skipped.
func (c *Coordinator) UpdateContext(ctx context.Context, req ContextRequest) *ContextResult {
	ctx = logging.WithSessionID(ctx, c.session.ID())
	result := &ContextResult{}

	if req.DisplayMode != nil {
		if *req.DisplayMode == schema.DisplayFullscreen && !c.caps.Fullscreen {
			warn := schema.NewError(schema.ErrCodeHostCapability,
				"fullscreen display is not supported by this host")
			c.logger.WarnContext(ctx, "ignoring unsupported display mode", "error", warn.Message)
			result.Warnings = append(result.Warnings, warn.Message)
		} else {
			c.session.SetDisplayMode(ctx, *req.DisplayMode)
		}
	}

	if req.SafeArea != nil {
		c.session.SetSafeArea(*req.SafeArea)
	}

	if req.Theme != nil && c.session.SetTheme(ctx, *req.Theme) {
		if payload := c.session.Payload(); payload != nil && payload.Valid() {
			c.pipeline.Submit(ctx, payload, *req.Theme)
			result.Rerendered = true
		}
	}

	return result
}

// Query evaluates an expression against the current scene and session.
func (c *Coordinator) Query(ctx context.Context, language, expression string) (any, error) {
	scope := query.BuildScope(
		c.container.Tree(),
		c.session.Payload(),
		c.session.Selection(),
		c.session.Theme(),
		c.session.DisplayMode(),
	)
	return c.runner.Run(ctx, language, expression, scope)
}

// Export returns the diagram identified by id (or the current payload
// when id is empty) in the requested format. SVG comes from the scene
// or history; PNG is re-rendered and only available for diagrams the
// primary engine covers.
func (c *Coordinator) Export(ctx context.Context, id, format string) ([]byte, error) {
	markup, backendID, svg, err := c.exportSource(ctx, id)
	if err != nil {
		return nil, err
	}

	switch format {
	case "", "svg":
		if len(svg) == 0 {
			return nil, schema.NewError(schema.ErrCodeNotFound, "no rendered output available yet")
		}
		return svg, nil
	case "png":
		if backendID != schema.BackendPrimary {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"png export requires the primary renderer, diagram uses %q", backendID)
		}
		return c.primary.RenderPNG(ctx, markup, render.PaletteFor(c.session.Theme()))
	default:
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"unknown export format %q, expected svg or png", format)
	}
}

func (c *Coordinator) exportSource(ctx context.Context, id string) (markup string, b schema.Backend, svg []byte, err error) {
	current := c.session.Payload()
	if id == "" || (current != nil && current.ID == id) {
		if current == nil {
			return "", "", nil, schema.NewError(schema.ErrCodeNotFound, "no diagram on display")
		}
		var svgBytes []byte
		if tree := c.container.Tree(); tree != nil {
			svgBytes = tree.SVG
		}
		return current.Markup, current.Backend, svgBytes, nil
	}

	if c.store == nil {
		return "", "", nil, schema.NewErrorf(schema.ErrCodeNotFound, "diagram %q not found", id)
	}
	d, err := c.store.GetDiagram(ctx, id)
	if err != nil {
		return "", "", nil, err
	}
	return d.Markup, d.Backend, d.SVG, nil
}

// History lists persisted diagrams.
func (c *Coordinator) History(ctx context.Context, filter store.DiagramFilter) ([]*store.Diagram, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.ListDiagrams(ctx, filter)
}

func (c *Coordinator) saveDiagram(ctx context.Context, payload *schema.DiagramPayload) {
	if c.store == nil {
		return
	}
	err := c.store.SaveDiagram(ctx, &store.Diagram{
		ID:          payload.ID,
		Title:       payload.Title,
		DiagramType: payload.DiagramType,
		Backend:     payload.Backend,
		Markup:      payload.Markup,
		Theme:       c.session.Theme(),
		SessionID:   c.session.ID(),
		CreatedAt:   payload.CreatedAt,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to persist diagram", "error", err)
	}
}

func (c *Coordinator) persistOutcome(ctx context.Context, payload *schema.DiagramPayload, out render.Outcome) {
	if c.store == nil || out.Discarded {
		return
	}

	eventType := schema.EventRenderCompleted
	var eventPayload map[string]any

	if out.Err != nil {
		eventType = schema.EventRenderFailed
		eventPayload = map[string]any{"error": out.Err.Message}
	} else if out.Tree != nil {
		// The outcome carries the tree this attempt produced; reading
		// the container here could pair a newer render's output with
		// this payload's id.
		now := time.Now().UTC()
		if err := c.store.UpdateDiagram(ctx, payload.ID, store.DiagramUpdate{
			SVG:        out.Tree.SVG,
			RenderedAt: &now,
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to persist render output", "error", err)
		}
		eventPayload = map[string]any{"elements": len(out.Tree.Elements)}
	}

	raw, _ := json.Marshal(eventPayload)
	if err := c.store.AppendRenderEvent(ctx, &store.RenderEvent{
		DiagramID: payload.ID,
		Type:      eventType,
		Payload:   raw,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to append render event", "error", err)
	}
}
