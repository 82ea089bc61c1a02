package viewport

import "github.com/RAZZKCODE/pdf-edit-print/geo"

// DragState is the selection life cycle: Idle -> Drawing -> Committed ->
// Idle.
type DragState int

const (
	DragIdle DragState = iota
	DragDrawing
	DragCommitted
)

func (d DragState) String() string {
	switch d {
	case DragIdle:
		return "idle"
	case DragDrawing:
		return "drawing"
	case DragCommitted:
		return "committed"
	}
	return "unknown"
}

// SignificanceThreshold is the noise floor, in display pixels, separating
// an intended crop from an accidental click.
const SignificanceThreshold = 10.0

// Significant reports whether a rectangle exceeds the noise threshold in
// both dimensions. Sub-threshold rectangles are treated as "no selection"
// throughout the pipeline.
func Significant(r geo.Rect) bool {
	return r.Width > SignificanceThreshold && r.Height > SignificanceThreshold
}

// Tracker turns raw pointer events into a normalized selection rectangle
// in display space. At most one rectangle exists at a time.
type Tracker struct {
	enabled bool
	state   DragState
	anchor  geo.Point
	rect    geo.Rect
}

// SetEnabled toggles selection mode. Disabling discards any rectangle.
func (t *Tracker) SetEnabled(on bool) {
	t.enabled = on
	if !on {
		t.Clear()
	}
}

// Enabled reports whether selection mode is active.
func (t *Tracker) Enabled() bool { return t.enabled }

// State returns the current drag state.
func (t *Tracker) State() DragState { return t.state }

// BeginDrag starts a new rectangle anchored at p. It is accepted only
// when selection mode is enabled, no drag is in progress, and p lies
// within the surface's display bounds. A committed rectangle is replaced
// by the new drag.
func (t *Tracker) BeginDrag(p geo.Point, surface geo.Rect) bool {
	if !t.enabled || t.state == DragDrawing || !surface.Contains(p) {
		return false
	}
	t.state = DragDrawing
	t.anchor = p
	t.rect = geo.Rect{X: p.X, Y: p.Y}
	return true
}

// UpdateDrag extends the rectangle to span anchor and p. The min/max
// normalization keeps width and height non-negative for any drag
// direction. Points outside the surface are allowed; clipping happens in
// pixel space at extraction time.
func (t *Tracker) UpdateDrag(p geo.Point) bool {
	if t.state != DragDrawing {
		return false
	}
	t.rect = geo.Canonical(t.anchor, p)
	return true
}

// EndDrag freezes the rectangle.
func (t *Tracker) EndDrag() bool {
	if t.state != DragDrawing {
		return false
	}
	t.state = DragCommitted
	return true
}

// Clear discards the rectangle and returns to Idle.
func (t *Tracker) Clear() {
	t.state = DragIdle
	t.rect = geo.Rect{}
	t.anchor = geo.Point{}
}

// Rect returns the current rectangle. The second value is false in Idle,
// when no rectangle exists.
func (t *Tracker) Rect() (geo.Rect, bool) {
	if t.state == DragIdle {
		return geo.Rect{}, false
	}
	return t.rect, true
}

// Significant reports whether a committed or in-progress rectangle
// exceeds the noise threshold.
func (t *Tracker) Significant() bool {
	r, ok := t.Rect()
	return ok && Significant(r)
}
