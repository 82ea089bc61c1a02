package viewport

import (
	"testing"

	"github.com/RAZZKCODE/pdf-edit-print/geo"
)

func TestNewState(t *testing.T) {
	s := NewState(10)
	if s.Page() != 1 {
		t.Errorf("initial page = %d, want 1", s.Page())
	}
	if s.Zoom() != ZoomDefault {
		t.Errorf("initial zoom = %v, want %v", s.Zoom(), ZoomDefault)
	}
	if s.PageCount() != 10 {
		t.Errorf("page count = %d, want 10", s.PageCount())
	}
}

func TestGoToPageBounds(t *testing.T) {
	s := NewState(10)
	if !s.GoToPage(4) {
		t.Fatalf("GoToPage(4) rejected with 10 pages")
	}
	if s.Page() != 4 {
		t.Errorf("page = %d, want 4", s.Page())
	}
	for _, n := range []int{0, -1, 11, 999} {
		if s.GoToPage(n) {
			t.Errorf("GoToPage(%d) accepted with 10 pages", n)
		}
		if s.Page() != 4 {
			t.Errorf("rejected navigation moved page to %d", s.Page())
		}
	}
}

func TestGoToPageClearsSelection(t *testing.T) {
	s := NewState(10)
	s.GoToPage(3)
	drawSelection(t, s, geo.Point{X: 10, Y: 10}, geo.Point{X: 60, Y: 60})
	if !s.Selection.Significant() {
		t.Fatalf("setup: selection should be significant")
	}

	if !s.GoToPage(4) {
		t.Fatalf("GoToPage(4) rejected")
	}
	if _, ok := s.Selection.Rect(); ok {
		t.Errorf("navigation kept a stale selection")
	}
	if s.Page() != 4 {
		t.Errorf("page = %d, want 4", s.Page())
	}

	// A rejected navigation is a strict no-op: it must not clear either.
	drawSelection(t, s, geo.Point{X: 10, Y: 10}, geo.Point{X: 60, Y: 60})
	if s.GoToPage(999) {
		t.Fatalf("GoToPage(999) accepted with 10 pages")
	}
	if _, ok := s.Selection.Rect(); !ok {
		t.Errorf("rejected navigation cleared the selection")
	}
}

func TestSetZoomClamps(t *testing.T) {
	s := NewState(3)
	tests := []struct {
		in, want float64
	}{
		{1.5, 1.5},
		{0.25, ZoomMin},
		{-2, ZoomMin},
		{5, ZoomMax},
		{ZoomMax, ZoomMax},
	}
	for _, tt := range tests {
		if got := s.SetZoom(tt.in); got != tt.want {
			t.Errorf("SetZoom(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if s.Zoom() != tt.want {
			t.Errorf("zoom after SetZoom(%v) = %v, want %v", tt.in, s.Zoom(), tt.want)
		}
	}
}

func TestZoomSteps(t *testing.T) {
	s := NewState(3)
	if got := s.ZoomIn(); got != 1.25 {
		t.Errorf("ZoomIn from default = %v, want 1.25", got)
	}
	s.SetZoom(ZoomMax)
	if got := s.ZoomIn(); got != ZoomMax {
		t.Errorf("ZoomIn at max = %v, want clamp at %v", got, ZoomMax)
	}
	s.SetZoom(ZoomMin)
	if got := s.ZoomOut(); got != ZoomMin {
		t.Errorf("ZoomOut at min = %v, want clamp at %v", got, ZoomMin)
	}
	s.SetZoom(2.0)
	if got := s.ResetZoom(); got != ZoomDefault {
		t.Errorf("ResetZoom = %v, want %v", got, ZoomDefault)
	}
}

func TestZoomClearsSelection(t *testing.T) {
	s := NewState(3)
	drawSelection(t, s, geo.Point{X: 10, Y: 10}, geo.Point{X: 80, Y: 80})
	s.SetZoom(2.0)
	if _, ok := s.Selection.Rect(); ok {
		t.Errorf("zoom change kept a selection with invalidated geometry")
	}
}

func drawSelection(t *testing.T, s *State, from, to geo.Point) {
	t.Helper()
	surface := geo.Rect{Width: 800, Height: 600}
	s.Selection.SetEnabled(true)
	if !s.Selection.BeginDrag(from, surface) {
		t.Fatalf("BeginDrag(%+v) rejected", from)
	}
	s.Selection.UpdateDrag(to)
	if !s.Selection.EndDrag() {
		t.Fatalf("EndDrag rejected")
	}
}
