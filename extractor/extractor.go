// Package extractor materializes pixel-exact crops from rendered raster
// surfaces and encodes them for download or printing.
package extractor

import (
	"errors"
	"image"
	"image/draw"

	"github.com/RAZZKCODE/pdf-edit-print/geo"
)

// ErrEmptyRegion is returned when the requested region has no area after
// rounding and clipping against the source bounds.
var ErrEmptyRegion = errors.New("empty region")

// Crop copies the given pixel-space region out of src into a fresh
// buffer. The copy preserves pixel values; no resampling happens here.
// The region is rounded with the floor-origin, ceil-extent policy and
// clipped to the source, so a rectangle touching the surface edge stays
// in bounds.
func Crop(src image.Image, r geo.PixelRect) (*image.NRGBA, error) {
	if r.Empty() {
		return nil, ErrEmptyRegion
	}
	b := src.Bounds()
	region := r.Bounds(b.Dx(), b.Dy()).Add(b.Min)
	if region.Empty() {
		return nil, ErrEmptyRegion
	}
	out := image.NewNRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(out, out.Bounds(), src, region.Min, draw.Src)
	return out, nil
}

// WholePage copies the full surface, the fallback when no usable
// selection exists.
func WholePage(src image.Image) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}
