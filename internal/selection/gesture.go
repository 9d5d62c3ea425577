package selection

import "github.com/rendis/vizor/pkg/schema"

// Gesture tracks one in-progress drag. It exists only for the
// duration of the gesture; Escape aborts it without touching the
// prior selection.
type Gesture struct {
	active  bool
	aborted bool
	startX  float64
	startY  float64
	curX    float64
	curY    float64
}

// Begin starts a drag at the given point.
func (g *Gesture) Begin(x, y float64) {
	*g = Gesture{active: true, startX: x, startY: y, curX: x, curY: y}
}

// Move updates the current drag point. Ignored when no drag is active
// or the gesture was aborted.
func (g *Gesture) Move(x, y float64) {
	if !g.active || g.aborted {
		return
	}
	g.curX, g.curY = x, y
}

// Abort cancels the gesture (escape key). Finish will report no
// selection change.
func (g *Gesture) Abort() {
	if g.active {
		g.aborted = true
	}
}

// Active reports whether a drag is in progress and not aborted.
func (g *Gesture) Active() bool {
	return g.active && !g.aborted
}

// Rect returns the current drag rectangle.
func (g *Gesture) Rect() schema.Rect {
	return schema.Rect{X1: g.startX, Y1: g.startY, X2: g.curX, Y2: g.curY}.Normalized()
}

// Finish ends the gesture and returns its rectangle. ok is false when
// the gesture was aborted or never started, in which case the caller
// must leave the existing selection untouched.
func (g *Gesture) Finish() (rect schema.Rect, ok bool) {
	if !g.active || g.aborted {
		*g = Gesture{}
		return schema.Rect{}, false
	}
	rect = g.Rect()
	*g = Gesture{}
	return rect, true
}
