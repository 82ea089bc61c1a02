package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"

	"github.com/RAZZKCODE/pdf-edit-print/fonts"
	"github.com/RAZZKCODE/pdf-edit-print/geo"
	"github.com/RAZZKCODE/pdf-edit-print/layout"
	"github.com/RAZZKCODE/pdf-edit-print/observability"
)

// Base page size for laid-out documents, in display pixels at zoom 1.
const (
	docPageWidth  = 816
	docPageHeight = 1056

	// docDensity oversamples the native raster so zoomed-in crops
	// stay sharp.
	docDensity = 2
)

// DocEngine lays out textual sources, markdown or HTML, into pages.
type DocEngine struct {
	lib *fonts.Library
	log observability.Logger
}

func NewDocEngine(lib *fonts.Library, log observability.Logger) *DocEngine {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &DocEngine{lib: lib, log: log}
}

// Detect accepts any NUL-free UTF-8 text. The engine belongs at the
// end of the dispatch order.
func (e *DocEngine) Detect(data []byte) bool {
	return utf8.Valid(data) && !bytes.ContainsRune(data, 0)
}

func (e *DocEngine) Open(ctx context.Context, data []byte, ask AskFunc) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eng := layout.NewEngine(e.lib,
		layout.WithPageSize(docPageWidth*docDensity, docPageHeight*docDensity),
		layout.WithFontSize(13*docDensity),
		layout.WithMargins(layout.Margins{
			Top:    48 * docDensity,
			Bottom: 48 * docDensity,
			Left:   48 * docDensity,
			Right:  48 * docDensity,
		}),
		layout.WithLogger(e.log),
	)

	src := string(data)
	var err error
	if looksHTML(data) {
		err = eng.RenderHTML(src)
	} else {
		err = eng.RenderMarkdown(src)
	}
	if err != nil {
		return nil, fmt.Errorf("lay out document: %w", err)
	}

	pages := eng.Pages()
	if len(pages) == 0 {
		pages = []*image.NRGBA{blankPage(docPageWidth*docDensity, docPageHeight*docDensity)}
	}

	e.log.Debug("document laid out", observability.Int("pages", len(pages)))
	return &docDocument{pages: pages}, nil
}

// looksHTML reports whether the source starts with markup.
func looksHTML(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '<'
}

func blankPage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// docDocument serves oversampled layout pages. The native raster is
// docDensity times the display size at zoom 1, so the display-to-pixel
// scale is docDensity/zoom.
type docDocument struct {
	pages []*image.NRGBA
}

func (d *docDocument) PageCount() int { return len(d.pages) }

func (d *docDocument) RenderPage(ctx context.Context, page int, zoom float64) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || page > len(d.pages) {
		return nil, fmt.Errorf("page %d of %d: %w", page, len(d.pages), ErrPageOutOfRange)
	}
	if zoom <= 0 {
		return nil, fmt.Errorf("zoom %v out of range", zoom)
	}

	src := d.pages[page-1]
	b := src.Bounds()
	return &Surface{
		Image: src,
		Geometry: geo.RasterGeometry{
			NativeWidth:   b.Dx(),
			NativeHeight:  b.Dy(),
			DisplayWidth:  float64(b.Dx()) / docDensity * zoom,
			DisplayHeight: float64(b.Dy()) / docDensity * zoom,
		},
	}, nil
}

func (d *docDocument) Close() error {
	d.pages = nil
	return nil
}
