package schema

// Event types published on the streaming hub and mirrored over SSE.
const (
	EventRenderStarted    = "render.started"
	EventRenderCompleted  = "render.completed"
	EventRenderFailed     = "render.failed"
	EventRenderDiscarded  = "render.discarded"
	EventSelectionChanged = "selection.changed"
	EventThemeChanged     = "theme.changed"
	EventDisplayChanged   = "display.changed"
)
