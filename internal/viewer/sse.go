package viewer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rendis/vizor/internal/streaming"
)

// handleSSE streams hub events to the client via Server-Sent Events.
// Optional query params narrow the stream: ?payload_id=... and
// ?types=render.completed,selection.changed.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	filter := streaming.Filter{
		PayloadID: r.URL.Query().Get("payload_id"),
	}
	if raw := r.URL.Query().Get("types"); raw != "" {
		filter.Types = strings.Split(raw, ",")
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch, cancel, err := s.deps.Hub.Subscribe(r.Context(), filter)
	if err != nil {
		s.deps.Logger.Error("SSE subscribe failed", "error", err)
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
