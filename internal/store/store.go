package store

import (
	"context"
	"time"
)

// Store defines the persistence layer contract.
// All implementations must be safe for concurrent use.
type Store interface {
	// Diagrams
	SaveDiagram(ctx context.Context, d *Diagram) error
	GetDiagram(ctx context.Context, id string) (*Diagram, error)
	UpdateDiagram(ctx context.Context, id string, update DiagramUpdate) error
	ListDiagrams(ctx context.Context, filter DiagramFilter) ([]*Diagram, error)
	DeleteDiagram(ctx context.Context, id string) error

	// Render log (append-only)
	AppendRenderEvent(ctx context.Context, event *RenderEvent) error
	GetRenderEvents(ctx context.Context, diagramID string, since int64) ([]*RenderEvent, error)

	// Retention
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Maintenance
	Migrate(ctx context.Context) error
	Vacuum(ctx context.Context) error

	// Lifecycle
	Close() error
}
