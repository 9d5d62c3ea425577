package schema

import "time"

// DiagramType is the classification tag derived from the first
// non-blank line of markup. The closed set of values mirrors the
// keyword table in internal/classify.
type DiagramType string

const (
	TypeFlowchart    DiagramType = "flowchart"
	TypeSequence     DiagramType = "sequence"
	TypeClass        DiagramType = "class"
	TypeState        DiagramType = "state"
	TypeER           DiagramType = "er"
	TypeJourney      DiagramType = "journey"
	TypeGantt        DiagramType = "gantt"
	TypePie          DiagramType = "pie"
	TypeQuadrant     DiagramType = "quadrant"
	TypeRequirement  DiagramType = "requirement"
	TypeGitGraph     DiagramType = "gitGraph"
	TypeC4           DiagramType = "c4"
	TypeMindmap      DiagramType = "mindmap"
	TypeTimeline     DiagramType = "timeline"
	TypeZenUML       DiagramType = "zenuml"
	TypeSankey       DiagramType = "sankey"
	TypeXYChart      DiagramType = "xyChart"
	TypeBlock        DiagramType = "block"
	TypePacket       DiagramType = "packet"
	TypeKanban       DiagramType = "kanban"
	TypeArchitecture DiagramType = "architecture"
	TypeRadar        DiagramType = "radar"
	TypeUnknown      DiagramType = "unknown"
)

// Backend identifies which rendering engine handles a payload.
type Backend string

const (
	BackendPrimary  Backend = "primary"
	BackendFallback Backend = "fallback"
	BackendNone     Backend = "none"
)

// Theme is the host-provided visual theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DisplayMode is how the host presents the visual surface.
type DisplayMode string

const (
	DisplayInline     DisplayMode = "inline"
	DisplayFullscreen DisplayMode = "fullscreen"
)

// Palette maps color roles to concrete values for one theme.
// Derived purely from Theme by render.PaletteFor.
type Palette struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Line       string `json:"line"`
	Accent     string `json:"accent"`
	Muted      string `json:"muted"`
	Surface    string `json:"surface"`
	Border     string `json:"border"`
}

// DiagramPayload is the immutable unit of work produced by a render
// request. A non-nil SyntaxError implies Backend == BackendNone and no
// render is attempted; a nil SyntaxError implies Backend is primary or
// fallback.
type DiagramPayload struct {
	ID          string      `json:"id"`
	Markup      string      `json:"markup"`
	Title       string      `json:"title,omitempty"`
	DiagramType DiagramType `json:"diagram_type"`
	SyntaxError string      `json:"syntax_error,omitempty"`
	Backend     Backend     `json:"renderer"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Valid reports whether the payload passed the syntax gate.
func (p *DiagramPayload) Valid() bool {
	return p.SyntaxError == ""
}

// Rect is an axis-aligned rectangle in the coordinate space of the
// rendered surface. X1/Y1 need not be the top-left corner; use
// Normalized before geometric tests.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Normalized returns an equivalent Rect with X1 <= X2 and Y1 <= Y2.
func (r Rect) Normalized() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Width returns the horizontal extent of the normalized rectangle.
func (r Rect) Width() float64 {
	n := r.Normalized()
	return n.X2 - n.X1
}

// Height returns the vertical extent of the normalized rectangle.
func (r Rect) Height() float64 {
	n := r.Normalized()
	return n.Y2 - n.Y1
}

// Overlaps reports strict axis overlap with other: a shared edge
// (zero-width overlap) does not count.
func (r Rect) Overlaps(other Rect) bool {
	a, b := r.Normalized(), other.Normalized()
	return a.X1 < b.X2 && a.X2 > b.X1 && a.Y1 < b.Y2 && a.Y2 > b.Y1
}

// ElementKind is the semantic classification of a selected element.
type ElementKind string

const (
	KindNode    ElementKind = "node"
	KindEdge    ElementKind = "edge"
	KindLabel   ElementKind = "label"
	KindUnknown ElementKind = "unknown"
)

// SelectedElement is one member of the current selection.
type SelectedElement struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Kind  ElementKind `json:"kind"`
}

// SafeArea holds host-reported safe-area insets in pixels.
type SafeArea struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}
