package store

import (
	"encoding/json"
	"time"

	"github.com/rendis/vizor/pkg/schema"
)

// Diagram is the persisted representation of one rendered payload:
// the markup as submitted plus the render result, so a session can be
// replayed or exported later without re-rendering.
type Diagram struct {
	ID          string             `json:"id"`
	Title       string             `json:"title,omitempty"`
	DiagramType schema.DiagramType `json:"diagram_type"`
	Backend     schema.Backend     `json:"renderer"`
	Markup      string             `json:"markup"`
	SVG         []byte             `json:"-"`
	Theme       schema.Theme       `json:"theme"`
	SyntaxError string             `json:"syntax_error,omitempty"`
	SessionID   string             `json:"session_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	RenderedAt  *time.Time         `json:"rendered_at,omitempty"`
}

// RenderEvent is an immutable entry in the per-diagram render log.
type RenderEvent struct {
	ID        int64           `json:"id"`
	DiagramID string          `json:"diagram_id"`
	Type      string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Sequence  int64           `json:"sequence"`
}

// --- Filter and update types ---

// DiagramFilter specifies criteria for listing diagrams.
type DiagramFilter struct {
	DiagramType schema.DiagramType `json:"diagram_type,omitempty"`
	Backend     schema.Backend     `json:"renderer,omitempty"`
	SessionID   string             `json:"session_id,omitempty"`
	Since       *time.Time         `json:"since,omitempty"`
	Limit       int                `json:"limit,omitempty"`
	Offset      int                `json:"offset,omitempty"`
}

// DiagramUpdate specifies mutable fields of a diagram record.
type DiagramUpdate struct {
	SVG         []byte        `json:"-"`
	Theme       *schema.Theme `json:"theme,omitempty"`
	SyntaxError *string       `json:"syntax_error,omitempty"`
	RenderedAt  *time.Time    `json:"rendered_at,omitempty"`
}

// RenderEventFilter specifies criteria for listing render events.
type RenderEventFilter struct {
	DiagramID string     `json:"diagram_id,omitempty"`
	EventType string     `json:"event_type,omitempty"`
	Since     *time.Time `json:"since,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}
