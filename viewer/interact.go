package viewer

import (
	"github.com/RAZZKCODE/pdf-edit-print/coords"
	"github.com/RAZZKCODE/pdf-edit-print/geo"
	"github.com/RAZZKCODE/pdf-edit-print/observability"
	"github.com/RAZZKCODE/pdf-edit-print/viewport"
)

// GoToPage moves to page n. Out-of-range requests change nothing and
// return false. A successful move clears the selection and re-renders.
func (s *Session) GoToPage(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToLocked(n)
}

// NextPage advances one page, if there is one.
func (s *Session) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false
	}
	return s.goToLocked(s.state.Page() + 1)
}

// PrevPage goes back one page, if there is one.
func (s *Session) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false
	}
	return s.goToLocked(s.state.Page() - 1)
}

func (s *Session) goToLocked(n int) bool {
	if s.state == nil {
		return false
	}
	hadSelection := s.state.Selection.State() != viewport.DragIdle
	if !s.state.GoToPage(n) {
		return false
	}
	if err := s.renderLocked(); err != nil {
		s.log.Error("render page",
			observability.Int("page", s.state.Page()),
			observability.Error("error", err))
	}
	if hadSelection {
		s.emitSelectionLocked()
	}
	s.emitLocked(PageChangedEvent{Page: s.state.Page()})
	return true
}

// SetZoom applies z clamped to the zoom range and returns the applied
// factor. Any zoom request discards the selection; the surface
// re-renders only when the factor actually changed.
func (s *Session) SetZoom(z float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setZoomLocked(z)
}

// ZoomIn increases zoom by one step.
func (s *Session) ZoomIn() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return viewport.ZoomDefault
	}
	return s.setZoomLocked(s.state.Zoom() + viewport.ZoomStep)
}

// ZoomOut decreases zoom by one step.
func (s *Session) ZoomOut() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return viewport.ZoomDefault
	}
	return s.setZoomLocked(s.state.Zoom() - viewport.ZoomStep)
}

// ResetZoom returns to the default factor.
func (s *Session) ResetZoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setZoomLocked(viewport.ZoomDefault)
}

func (s *Session) setZoomLocked(z float64) float64 {
	if s.state == nil {
		return viewport.ZoomDefault
	}
	prev := s.state.Zoom()
	hadSelection := s.state.Selection.State() != viewport.DragIdle
	applied := s.state.SetZoom(z)
	if hadSelection {
		s.emitSelectionLocked()
	}
	if applied == prev {
		return applied
	}
	if err := s.renderLocked(); err != nil {
		s.log.Error("render zoom",
			observability.Float64("zoom", applied),
			observability.Error("error", err))
	}
	s.emitLocked(ZoomChangedEvent{Zoom: applied})
	return applied
}

// SetSelectionMode toggles selection. Disabling discards any rectangle.
func (s *Session) SetSelectionMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return
	}
	hadSelection := s.state.Selection.State() != viewport.DragIdle
	s.state.Selection.SetEnabled(on)
	if !on && hadSelection {
		s.emitSelectionLocked()
	}
}

// PointerDown starts a selection drag. p is in container coordinates;
// the press must land on the surface.
func (s *Session) PointerDown(p geo.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || s.surface == nil {
		return false
	}
	g := s.surface.Geometry
	rel := coords.SurfaceRelative(p, g)
	if !s.state.Selection.BeginDrag(rel, g.DisplayBounds()) {
		return false
	}
	s.emitSelectionLocked()
	return true
}

// PointerMove extends the drag to p. Points past the surface edge are
// fine; clipping happens at extraction.
func (s *Session) PointerMove(p geo.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || s.surface == nil {
		return false
	}
	rel := coords.SurfaceRelative(p, s.surface.Geometry)
	if !s.state.Selection.UpdateDrag(rel) {
		return false
	}
	s.emitSelectionLocked()
	return true
}

// PointerUp commits the drag.
func (s *Session) PointerUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false
	}
	if !s.state.Selection.EndDrag() {
		return false
	}
	s.emitSelectionLocked()
	return true
}

// Select places a committed selection as one synthetic gesture, for
// scripts. Coordinates are surface-relative display pixels; the anchor
// must lie on the surface.
func (s *Session) Select(x, y, w, h float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || s.surface == nil {
		return false
	}
	sel := &s.state.Selection
	sel.Clear()
	if !sel.BeginDrag(geo.Point{X: x, Y: y}, s.surface.Geometry.DisplayBounds()) {
		return false
	}
	sel.UpdateDrag(geo.Point{X: x + w, Y: y + h})
	if !sel.EndDrag() {
		sel.Clear()
		return false
	}
	s.emitSelectionLocked()
	return true
}

// ClearSelection discards the selection rectangle.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return
	}
	hadSelection := s.state.Selection.State() != viewport.DragIdle
	s.state.Selection.Clear()
	if hadSelection {
		s.emitSelectionLocked()
	}
}

// SelectionRect returns the current selection rectangle in display
// space, false when none exists.
func (s *Session) SelectionRect() (geo.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return geo.Rect{}, false
	}
	return s.state.Selection.Rect()
}

// SelectionSignificant reports whether the selection exceeds the noise
// threshold.
func (s *Session) SelectionSignificant() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false
	}
	return s.state.Selection.Significant()
}

func (s *Session) emitSelectionLocked() {
	r, _ := s.state.Selection.Rect()
	s.emitLocked(SelectionChangedEvent{
		State:       s.state.Selection.State(),
		Rect:        r,
		Significant: viewport.Significant(r),
	})
}
