// Package viewport holds the interaction state of a document viewer: the
// current page, the zoom factor and the in-progress selection rectangle.
// It is pure state with transition rules and performs no I/O.
package viewport

// Zoom limits. Requests outside the range clamp rather than fail.
const (
	ZoomMin     = 0.5
	ZoomMax     = 3.0
	ZoomStep    = 0.25
	ZoomDefault = 1.0
)

// State is created when a document opens and discarded when it is closed
// or replaced. The current page always satisfies
// 1 <= page <= max(pageCount, 1).
type State struct {
	page      int
	pageCount int
	zoom      float64

	// Selection is the drawing sub-state. Navigation and zoom changes
	// clear it in the same state update that applies them, so a stale
	// rectangle is never observable.
	Selection Tracker
}

// NewState returns viewer state positioned on page 1 at default zoom.
func NewState(pageCount int) *State {
	if pageCount < 0 {
		pageCount = 0
	}
	return &State{page: 1, pageCount: pageCount, zoom: ZoomDefault}
}

// Page returns the current 1-based page index.
func (s *State) Page() int { return s.page }

// PageCount returns the number of pages in the open document.
func (s *State) PageCount() int { return s.pageCount }

// Zoom returns the current zoom factor.
func (s *State) Zoom() float64 { return s.zoom }

// GoToPage moves to page n. Out-of-range requests are a strict no-op and
// return false: nothing changes, including the selection. A successful
// move clears the selection, since a rectangle drawn against another page
// is meaningless.
func (s *State) GoToPage(n int) bool {
	if n < 1 || n > s.pageCount {
		return false
	}
	s.page = n
	s.Selection.Clear()
	return true
}

// NextPage advances one page, if there is one.
func (s *State) NextPage() bool { return s.GoToPage(s.page + 1) }

// PrevPage goes back one page, if there is one.
func (s *State) PrevPage() bool { return s.GoToPage(s.page - 1) }

// SetZoom clamps z to [ZoomMin, ZoomMax], applies it and returns the
// applied value. The selection is cleared: its display geometry is
// invalidated by any zoom request.
func (s *State) SetZoom(z float64) float64 {
	if z < ZoomMin {
		z = ZoomMin
	}
	if z > ZoomMax {
		z = ZoomMax
	}
	s.zoom = z
	s.Selection.Clear()
	return s.zoom
}

// ZoomIn increases zoom by one step.
func (s *State) ZoomIn() float64 { return s.SetZoom(s.zoom + ZoomStep) }

// ZoomOut decreases zoom by one step.
func (s *State) ZoomOut() float64 { return s.SetZoom(s.zoom - ZoomStep) }

// ResetZoom returns to the default factor.
func (s *State) ResetZoom() float64 { return s.SetZoom(ZoomDefault) }
