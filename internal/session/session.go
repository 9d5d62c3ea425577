// Package session holds the mutable per-session state: the payload on
// display, the current selection, and the host context (theme, display
// mode, safe area). State changes fan out on the streaming hub so the
// viewer and the agent surface stay in sync.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rendis/vizor/internal/streaming"
	"github.com/rendis/vizor/pkg/schema"
)

// Session is the authoritative state for one agent conversation.
// Safe for concurrent use.
type Session struct {
	id  string
	hub streaming.EventHub

	mu          sync.RWMutex
	payload     *schema.DiagramPayload
	selection   []schema.SelectedElement
	theme       schema.Theme
	displayMode schema.DisplayMode
	safeArea    schema.SafeArea
}

// Snapshot is a consistent read of the session at one instant.
type Snapshot struct {
	SessionID   string                   `json:"session_id"`
	Payload     *schema.DiagramPayload   `json:"payload,omitempty"`
	Selection   []schema.SelectedElement `json:"selection"`
	Theme       schema.Theme             `json:"theme"`
	DisplayMode schema.DisplayMode       `json:"display_mode"`
	SafeArea    schema.SafeArea          `json:"safe_area"`
}

// New creates a session with light theme and inline display, the
// defaults a host reports when it never sends a context event.
func New(hub streaming.EventHub) *Session {
	return &Session{
		id:          uuid.New().String(),
		hub:         hub,
		theme:       schema.ThemeLight,
		displayMode: schema.DisplayInline,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetPayload installs a new payload and clears the selection: the
// elements it referenced belong to the outgoing diagram.
func (s *Session) SetPayload(payload *schema.DiagramPayload) {
	s.mu.Lock()
	s.payload = payload
	s.selection = nil
	s.mu.Unlock()
}

// Payload returns the payload on display, or nil before the first render.
func (s *Session) Payload() *schema.DiagramPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payload
}

// SetSelection replaces the current selection and publishes a
// selection.changed event. An empty selection is a valid state.
func (s *Session) SetSelection(ctx context.Context, selection []schema.SelectedElement) {
	s.mu.Lock()
	s.selection = selection
	payloadID := ""
	if s.payload != nil {
		payloadID = s.payload.ID
	}
	s.mu.Unlock()

	s.publish(ctx, streaming.Event{
		Type:      schema.EventSelectionChanged,
		PayloadID: payloadID,
		Data:      map[string]any{"count": len(selection)},
	})
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() []schema.SelectedElement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.SelectedElement, len(s.selection))
	copy(out, s.selection)
	return out
}

// ClearSelection empties the selection and publishes the change.
func (s *Session) ClearSelection(ctx context.Context) {
	s.SetSelection(ctx, nil)
}

// SetTheme records a host theme change. Returns true when the theme
// actually changed, so the caller knows a re-render is due.
func (s *Session) SetTheme(ctx context.Context, theme schema.Theme) bool {
	s.mu.Lock()
	if s.theme == theme {
		s.mu.Unlock()
		return false
	}
	s.theme = theme
	s.mu.Unlock()

	s.publish(ctx, streaming.Event{
		Type: schema.EventThemeChanged,
		Data: map[string]any{"theme": string(theme)},
	})
	return true
}

// Theme returns the current theme.
func (s *Session) Theme() schema.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetDisplayMode records a host display-mode change.
func (s *Session) SetDisplayMode(ctx context.Context, mode schema.DisplayMode) {
	s.mu.Lock()
	if s.displayMode == mode {
		s.mu.Unlock()
		return
	}
	s.displayMode = mode
	s.mu.Unlock()

	s.publish(ctx, streaming.Event{
		Type: schema.EventDisplayChanged,
		Data: map[string]any{"display_mode": string(mode)},
	})
}

// DisplayMode returns the current display mode.
func (s *Session) DisplayMode() schema.DisplayMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayMode
}

// SetSafeArea records host-reported safe-area insets.
func (s *Session) SetSafeArea(insets schema.SafeArea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.safeArea = insets
}

// SafeArea returns the current safe-area insets.
func (s *Session) SafeArea() schema.SafeArea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.safeArea
}

// Snapshot returns a consistent copy of the full session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selection := make([]schema.SelectedElement, len(s.selection))
	copy(selection, s.selection)

	return Snapshot{
		SessionID:   s.id,
		Payload:     s.payload,
		Selection:   selection,
		Theme:       s.theme,
		DisplayMode: s.displayMode,
		SafeArea:    s.safeArea,
	}
}

func (s *Session) publish(ctx context.Context, event streaming.Event) {
	if s.hub == nil {
		return
	}
	_ = s.hub.Publish(ctx, event)
}
