package streaming

import "context"

// Event is a real-time event emitted by the render pipeline and the
// session (render lifecycle, selection, theme, display mode).
type Event struct {
	Type      string         `json:"type"`
	PayloadID string         `json:"payload_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Filter specifies which events a subscriber wants to receive.
type Filter struct {
	PayloadID string   `json:"payload_id,omitempty"`
	Types     []string `json:"types,omitempty"`
}

// EventHub provides pub/sub for real-time viewer events.
type EventHub interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, func(), error)
}
