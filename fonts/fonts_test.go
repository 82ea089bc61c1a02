package fonts

import "testing"

func TestNewLibrary(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	for _, style := range []Style{Regular, Bold, Italic, Mono} {
		if _, err := lib.Face(style, 14); err != nil {
			t.Errorf("Face(%v, 14): %v", style, err)
		}
	}
}

func TestFaceCache(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	a, err := lib.Face(Regular, 12)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	b, err := lib.Face(Regular, 12)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if a != b {
		t.Errorf("same style and size returned distinct faces")
	}
	c, err := lib.Face(Regular, 24)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if a == c {
		t.Errorf("different sizes shared a face")
	}
}

func TestMeasure(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	w := lib.Measure("hello, world", Regular, 14)
	if w <= 0 {
		t.Fatalf("measure = %v, want positive width", w)
	}
	wide := lib.Measure("hello, world, and then some", Regular, 14)
	if wide <= w {
		t.Errorf("longer text measured %v, shorter %v", wide, w)
	}
	big := lib.Measure("hello, world", Regular, 28)
	if big <= w {
		t.Errorf("larger size measured %v, smaller %v", big, w)
	}
	if got := lib.Measure("", Regular, 14); got != 0 {
		t.Errorf("empty string measured %v, want 0", got)
	}
}

func TestLineHeight(t *testing.T) {
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	h, err := lib.LineHeight(Regular, 14)
	if err != nil {
		t.Fatalf("LineHeight: %v", err)
	}
	if h < 14 {
		t.Errorf("line height %v below font size", h)
	}
}
