package viewport

import (
	"testing"

	"github.com/RAZZKCODE/pdf-edit-print/geo"
)

var surface = geo.Rect{Width: 800, Height: 600}

func TestDragNormalizesDirection(t *testing.T) {
	var tr Tracker
	tr.SetEnabled(true)
	if !tr.BeginDrag(geo.Point{X: 50, Y: 50}, surface) {
		t.Fatalf("BeginDrag rejected")
	}
	tr.UpdateDrag(geo.Point{X: 10, Y: 10})
	r, ok := tr.Rect()
	if !ok {
		t.Fatalf("no rect while drawing")
	}
	want := geo.Rect{X: 10, Y: 10, Width: 40, Height: 40}
	if r != want {
		t.Errorf("drag 50,50 -> 10,10: got %+v, want %+v", r, want)
	}
	if r.Width < 0 || r.Height < 0 {
		t.Errorf("negative dimensions: %+v", r)
	}
}

func TestDragStateMachine(t *testing.T) {
	var tr Tracker

	// Disabled mode rejects drags.
	if tr.BeginDrag(geo.Point{X: 5, Y: 5}, surface) {
		t.Errorf("BeginDrag accepted with selection mode off")
	}

	tr.SetEnabled(true)
	if tr.UpdateDrag(geo.Point{X: 5, Y: 5}) {
		t.Errorf("UpdateDrag accepted in Idle")
	}
	if tr.EndDrag() {
		t.Errorf("EndDrag accepted in Idle")
	}

	if !tr.BeginDrag(geo.Point{X: 5, Y: 5}, surface) {
		t.Fatalf("BeginDrag rejected")
	}
	if tr.State() != DragDrawing {
		t.Errorf("state = %v, want drawing", tr.State())
	}
	if tr.BeginDrag(geo.Point{X: 7, Y: 7}, surface) {
		t.Errorf("BeginDrag accepted while already drawing")
	}
	tr.UpdateDrag(geo.Point{X: 30, Y: 40})
	if !tr.EndDrag() {
		t.Fatalf("EndDrag rejected while drawing")
	}
	if tr.State() != DragCommitted {
		t.Errorf("state = %v, want committed", tr.State())
	}
	if tr.UpdateDrag(geo.Point{X: 60, Y: 60}) {
		t.Errorf("UpdateDrag accepted after commit")
	}

	// A new drag replaces the committed rectangle.
	if !tr.BeginDrag(geo.Point{X: 100, Y: 100}, surface) {
		t.Errorf("BeginDrag rejected from committed state")
	}

	tr.Clear()
	if tr.State() != DragIdle {
		t.Errorf("state after Clear = %v, want idle", tr.State())
	}
	if _, ok := tr.Rect(); ok {
		t.Errorf("rect survived Clear")
	}
}

func TestBeginDragOutsideSurface(t *testing.T) {
	var tr Tracker
	tr.SetEnabled(true)
	for _, p := range []geo.Point{{X: -1, Y: 10}, {X: 10, Y: -1}, {X: 801, Y: 10}, {X: 10, Y: 601}} {
		if tr.BeginDrag(p, surface) {
			t.Errorf("BeginDrag(%+v) accepted outside surface bounds", p)
		}
	}
}

func TestDragMayLeaveSurface(t *testing.T) {
	var tr Tracker
	tr.SetEnabled(true)
	tr.BeginDrag(geo.Point{X: 790, Y: 590}, surface)
	tr.UpdateDrag(geo.Point{X: 900, Y: 700})
	r, _ := tr.Rect()
	want := geo.Rect{X: 790, Y: 590, Width: 110, Height: 110}
	if r != want {
		t.Errorf("got %+v, want %+v (clipping is deferred to pixel space)", r, want)
	}
}

func TestSignificance(t *testing.T) {
	tests := []struct {
		r    geo.Rect
		want bool
	}{
		{geo.Rect{Width: 11, Height: 11}, true},
		{geo.Rect{Width: 10, Height: 11}, false},
		{geo.Rect{Width: 11, Height: 10}, false},
		{geo.Rect{Width: 10, Height: 10}, false},
		{geo.Rect{Width: 200, Height: 5}, false},
		{geo.Rect{}, false},
	}
	for _, tt := range tests {
		if got := Significant(tt.r); got != tt.want {
			t.Errorf("Significant(%gx%g) = %v, want %v", tt.r.Width, tt.r.Height, got, tt.want)
		}
	}
}

func TestSelectionModeOffClears(t *testing.T) {
	var tr Tracker
	tr.SetEnabled(true)
	tr.BeginDrag(geo.Point{X: 10, Y: 10}, surface)
	tr.UpdateDrag(geo.Point{X: 90, Y: 90})
	tr.EndDrag()
	tr.SetEnabled(false)
	if _, ok := tr.Rect(); ok {
		t.Errorf("toggling selection mode off kept the rectangle")
	}
}

func TestZeroSizeAtAnchor(t *testing.T) {
	var tr Tracker
	tr.SetEnabled(true)
	tr.BeginDrag(geo.Point{X: 25, Y: 35}, surface)
	r, ok := tr.Rect()
	if !ok {
		t.Fatalf("no rect after BeginDrag")
	}
	want := geo.Rect{X: 25, Y: 35}
	if r != want {
		t.Errorf("anchor rect = %+v, want zero-size %+v", r, want)
	}
}
