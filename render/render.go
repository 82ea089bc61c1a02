// Package render opens document sources and rasterizes their pages.
//
// An Engine recognizes one source format and opens it into a Document,
// a pageable raster source. Rendering is synchronous: RenderPage
// returns the finished surface directly.
package render

import (
	"context"
	"errors"
	"image"

	"github.com/RAZZKCODE/pdf-edit-print/fonts"
	"github.com/RAZZKCODE/pdf-edit-print/geo"
	"github.com/RAZZKCODE/pdf-edit-print/observability"
	"github.com/RAZZKCODE/pdf-edit-print/passphrase"
	"github.com/RAZZKCODE/pdf-edit-print/recovery"
)

// AskFunc requests a passphrase from the user. It blocks until a
// passphrase arrives or the request is dismissed.
type AskFunc = passphrase.AskFunc

var (
	// ErrUnsupportedFormat reports that no engine recognizes the source.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrPassphraseCancelled reports that the user dismissed a
	// passphrase request before the source could be opened.
	ErrPassphraseCancelled = errors.New("passphrase request cancelled")

	// ErrPageOutOfRange reports a render request outside 1..PageCount.
	ErrPageOutOfRange = errors.New("page out of range")
)

// Surface is one rendered page raster plus the geometry that relates
// it to display space. The image is shared across renders of the same
// page; callers must not mutate it.
type Surface struct {
	Image    *image.NRGBA
	Geometry geo.RasterGeometry
}

// Document is an open, pageable source. Page indexes are 1-based.
type Document interface {
	// PageCount reports the number of pages.
	PageCount() int

	// RenderPage rasterizes a page at the given zoom. The surface
	// geometry carries fresh native and display dimensions; the
	// display origin is zero, scrolling belongs to the caller.
	RenderPage(ctx context.Context, page int, zoom float64) (*Surface, error)

	// Close releases the document's resources.
	Close() error
}

// Engine recognizes and opens one source format.
type Engine interface {
	// Detect reports whether the engine can open the data.
	Detect(data []byte) bool

	// Open decodes the data into a pageable document. Engines for
	// protected sources call ask, possibly repeatedly, until a
	// passphrase verifies or the request is dismissed.
	Open(ctx context.Context, data []byte, ask AskFunc) (Document, error)
}

// Open dispatches data to the first engine that detects its format.
func Open(ctx context.Context, data []byte, ask AskFunc, engines ...Engine) (Document, error) {
	for _, eng := range engines {
		if eng.Detect(data) {
			return eng.Open(ctx, data, ask)
		}
	}
	return nil, ErrUnsupportedFormat
}

// Config assembles the standard engine set.
type Config struct {
	// Fonts backs the layout engine for text documents. Loaded from
	// the built-in faces when nil.
	Fonts *fonts.Library

	// Recovery decides what happens when an album member fails to
	// decode. Strict when nil.
	Recovery recovery.Strategy

	Log observability.Logger
}

// DefaultEngines returns the standard engine set: raster images, zip
// albums, sealed vaults and laid-out text documents. Order matters:
// the text engine detects loosely and goes last.
func DefaultEngines(cfg Config) ([]Engine, error) {
	if cfg.Log == nil {
		cfg.Log = observability.NopLogger{}
	}
	if cfg.Recovery == nil {
		cfg.Recovery = recovery.NewStrictStrategy()
	}
	if cfg.Fonts == nil {
		lib, err := fonts.NewLibrary()
		if err != nil {
			return nil, err
		}
		cfg.Fonts = lib
	}

	images := NewImageEngine(cfg.Log)
	album := NewAlbumEngine(images, cfg.Recovery, cfg.Log)
	doc := NewDocEngine(cfg.Fonts, cfg.Log)
	vault := NewVaultEngine(cfg.Log, images, album, doc)

	return []Engine{images, album, vault, doc}, nil
}
