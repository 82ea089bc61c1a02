package render

import (
	"archive/zip"
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/RAZZKCODE/pdf-edit-print/recovery"
)

func zipBytes(t *testing.T, members []struct {
	name string
	data []byte
}) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			t.Fatalf("zip create %q: %v", m.name, err)
		}
		if _, err := w.Write(m.data); err != nil {
			t.Fatalf("zip write %q: %v", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestAlbumDetect(t *testing.T) {
	e := NewAlbumEngine(NewImageEngine(nil), nil, nil)
	if !e.Detect([]byte("PK\x03\x04rest")) {
		t.Error("Detect() = false for zip magic")
	}
	if e.Detect([]byte("PNG")) {
		t.Error("Detect() = true for non-zip data")
	}
}

func TestAlbumOpenSortedPages(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	blue := color.NRGBA{B: 0xff, A: 0xff}

	// Archive order is b then a; pages must come back sorted by name.
	data := zipBytes(t, []struct {
		name string
		data []byte
	}{
		{"b.png", pngBytes(t, 10, 10, blue)},
		{"a.png", pngBytes(t, 10, 10, red)},
	})

	e := NewAlbumEngine(NewImageEngine(nil), nil, nil)
	doc, err := e.Open(context.Background(), data, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer doc.Close()

	if got := doc.PageCount(); got != 2 {
		t.Fatalf("PageCount() = %d, want 2", got)
	}

	first, err := doc.RenderPage(context.Background(), 1, 1.0)
	if err != nil {
		t.Fatalf("RenderPage(1) error = %v", err)
	}
	if got := first.Image.NRGBAAt(2, 2); got != red {
		t.Errorf("page 1 pixel = %v, want red (a.png)", got)
	}

	second, err := doc.RenderPage(context.Background(), 2, 1.0)
	if err != nil {
		t.Fatalf("RenderPage(2) error = %v", err)
	}
	if got := second.Image.NRGBAAt(2, 2); got != blue {
		t.Errorf("page 2 pixel = %v, want blue (b.png)", got)
	}
}

func TestAlbumLenientSkipsDamaged(t *testing.T) {
	data := zipBytes(t, []struct {
		name string
		data []byte
	}{
		{"a.png", pngBytes(t, 10, 10, color.NRGBA{R: 0xff, A: 0xff})},
		{"b.png", []byte("not an image")},
	})

	strategy := recovery.NewLenientStrategy(nil)
	e := NewAlbumEngine(NewImageEngine(nil), strategy, nil)
	doc, err := e.Open(context.Background(), data, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer doc.Close()

	if got := doc.PageCount(); got != 1 {
		t.Errorf("PageCount() = %d, want 1 after skipping damaged member", got)
	}
	if len(strategy.Errors) != 1 {
		t.Errorf("retained errors = %d, want 1", len(strategy.Errors))
	}
}

func TestAlbumStrictFailsOnDamaged(t *testing.T) {
	data := zipBytes(t, []struct {
		name string
		data []byte
	}{
		{"a.png", pngBytes(t, 10, 10, color.NRGBA{R: 0xff, A: 0xff})},
		{"b.png", []byte("not an image")},
	})

	e := NewAlbumEngine(NewImageEngine(nil), recovery.NewStrictStrategy(), nil)
	if _, err := e.Open(context.Background(), data, nil); err == nil {
		t.Fatal("Open() succeeded, want failure on damaged member")
	}
}

func TestAlbumNoDecodableMembers(t *testing.T) {
	data := zipBytes(t, []struct {
		name string
		data []byte
	}{
		{"readme.txt", []byte("nothing to see")},
	})

	e := NewAlbumEngine(NewImageEngine(nil), recovery.NewLenientStrategy(nil), nil)
	if _, err := e.Open(context.Background(), data, nil); err == nil {
		t.Fatal("Open() succeeded on album with no decodable members")
	}
}

func TestAlbumDirectoriesIgnored(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("photos/"); err != nil {
		t.Fatalf("zip create dir: %v", err)
	}
	w, err := zw.Create("photos/a.png")
	if err != nil {
		t.Fatalf("zip create member: %v", err)
	}
	if _, err := w.Write(pngBytes(t, 10, 10, color.NRGBA{G: 0xff, A: 0xff})); err != nil {
		t.Fatalf("zip write member: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	e := NewAlbumEngine(NewImageEngine(nil), nil, nil)
	doc, err := e.Open(context.Background(), buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer doc.Close()

	if got := doc.PageCount(); got != 1 {
		t.Errorf("PageCount() = %d, want 1", got)
	}
}
