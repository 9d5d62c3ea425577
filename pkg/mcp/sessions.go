package mcp

import "sync"

// SessionRegistry tracks the MCP client session currently attached to
// the conversation. The stdio transport carries a single client; the
// registry exists so notification pushes survive reconnects, where a
// new session ID replaces the old one.
type SessionRegistry struct {
	mu      sync.RWMutex
	current string
}

// NewSessionRegistry creates a new empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{}
}

// Register records the session ID of the connected client.
// An existing mapping is overwritten (reconnect).
func (r *SessionRegistry) Register(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = sessionID
}

// Current returns the session ID of the connected client, if any.
func (r *SessionRegistry) Current() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.current != ""
}

// Remove clears the mapping for the given session ID. A stale ID that
// has already been replaced by a reconnect is left alone.
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == sessionID {
		r.current = ""
	}
}
