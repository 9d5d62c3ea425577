// Package render owns the asynchronous render pipeline: request
// submission, stale-result discarding, scene installation, and
// selection-highlight synchronization.
package render

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rendis/vizor/internal/logging"
	"github.com/rendis/vizor/internal/renderer"
	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/internal/streaming"
	"github.com/rendis/vizor/pkg/schema"
)

// State is the pipeline lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRendering State = "rendering"
	StateRendered  State = "rendered"
	StateErrored   State = "errored"
)

// Outcome reports how one render attempt ended. Tree is the scene tree
// this attempt installed; it is nil for discarded and failed attempts.
type Outcome struct {
	Token     uint64
	PayloadID string
	Discarded bool
	Tree      *scene.Tree
	Err       *schema.VizorError
}

// Pipeline dispatches render requests to the engines. One render is
// visible at a time: each request gets a monotonically increasing
// token, and a result is applied only if its token still equals the
// latest issued one ("last request wins", regardless of completion
// order).
type Pipeline struct {
	registry  *renderer.Registry
	container *scene.Container
	hub       streaming.EventHub
	logger    *slog.Logger

	token atomic.Uint64

	mu      sync.Mutex
	state   State
	lastErr *schema.VizorError
}

// NewPipeline creates a pipeline over the engine registry, installing
// results into the given container.
func NewPipeline(registry *renderer.Registry, container *scene.Container, hub streaming.EventHub, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry:  registry,
		container: container,
		hub:       hub,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastError returns the error of the most recent failed render, or
// nil when the last render succeeded.
func (p *Pipeline) LastError() *schema.VizorError {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Submit starts an asynchronous render of the payload with the given
// theme snapshot and returns the request token plus a channel that
// yields the attempt's outcome exactly once. Submitting again before
// completion supersedes the prior request: its result is discarded on
// arrival, never installed.
func (p *Pipeline) Submit(ctx context.Context, payload *schema.DiagramPayload, theme schema.Theme) (uint64, <-chan Outcome) {
	token := p.token.Add(1)
	done := make(chan Outcome, 1)

	ctx = logging.WithRequestID(ctx, payload.ID)
	ctx = logging.WithBackend(ctx, string(payload.Backend))
	log := logging.LogWith(ctx, p.logger)

	p.mu.Lock()
	p.state = StateRendering
	p.mu.Unlock()

	p.publish(ctx, schema.EventRenderStarted, payload.ID, map[string]any{
		"diagram_type": payload.DiagramType,
		"renderer":     payload.Backend,
	})

	go func() {
		eng := p.registry.For(payload.Backend)
		palette := PaletteFor(theme)

		tree, err := eng.Render(ctx, payload.Markup, palette)

		// Async boundary: the staleness check and the result application
		// form one critical section, so a stale result can never install
		// after a newer one has already passed its own check.
		p.mu.Lock()
		if latest := p.token.Load(); token != latest {
			p.mu.Unlock()
			log.Debug("render discarded", "token", token, "latest", latest)
			p.publish(ctx, schema.EventRenderDiscarded, payload.ID, nil)
			done <- Outcome{Token: token, PayloadID: payload.ID, Discarded: true}
			return
		}

		if err != nil {
			// Engine message captured verbatim; reported, never retried.
			verr := schema.NewError(schema.ErrCodeEngineRender, err.Error()).WithCause(err)
			p.state = StateErrored
			p.lastErr = verr
			p.mu.Unlock()

			log.Warn("render failed", "engine", eng.Name(), "error", err)
			p.publish(ctx, schema.EventRenderFailed, payload.ID, map[string]any{"error": err.Error()})
			done <- Outcome{Token: token, PayloadID: payload.ID, Err: verr}
			return
		}

		p.container.Install(tree)
		p.state = StateRendered
		p.lastErr = nil
		p.mu.Unlock()

		log.Info("render completed", "engine", eng.Name(), "elements", len(tree.Elements))
		p.publish(ctx, schema.EventRenderCompleted, payload.ID, map[string]any{
			"elements": len(tree.Elements),
			"width":    tree.Width,
			"height":   tree.Height,
		})
		done <- Outcome{Token: token, PayloadID: payload.ID, Tree: tree}
	}()

	return token, done
}

// SyncSelection synchronizes visual highlighting with the current
// selection: all prior markers are cleared, then a marker is applied
// to each element whose id exists in the current tree. Ids from a
// since-replaced tree are skipped silently.
func (p *Pipeline) SyncSelection(selection []schema.SelectedElement) {
	ids := make([]string, len(selection))
	for i, s := range selection {
		ids[i] = s.ID
	}
	p.container.SetHighlights(ids)
}

func (p *Pipeline) publish(ctx context.Context, eventType, payloadID string, extra map[string]any) {
	if p.hub == nil {
		return
	}
	_ = p.hub.Publish(ctx, streaming.Event{
		Type:      eventType,
		PayloadID: payloadID,
		Data:      extra,
	})
}
