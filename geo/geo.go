package geo

import (
	"image"
	"math"
)

// Point is a position in display space, measured in on-screen pixels.
type Point struct {
	X, Y float64
}

// Rect is a rectangle in display space, origin at the rendered surface's
// top-left at the current zoom. Width and Height are never negative for
// rectangles produced by this package.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Empty returns true if the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains returns true if p lies within the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Canonical returns the rectangle spanned by two opposite corners,
// swapping coordinates as needed so Width and Height are non-negative.
func Canonical(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// PixelRect is a rectangle in the raster surface's native pixel grid,
// already clipped to [0, nativeWidth] x [0, nativeHeight]. It is derived
// per extraction and never persisted.
type PixelRect struct {
	X, Y          float64
	Width, Height float64
}

// Empty returns true if the rectangle has no area.
func (r PixelRect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Bounds converts the rectangle to integer pixel bounds: floor for the
// origin, ceil for the extent, then a final clip to the native bounds so
// rounding can never reach outside the source buffer.
func (r PixelRect) Bounds(nativeWidth, nativeHeight int) image.Rectangle {
	x0 := int(math.Floor(r.X))
	y0 := int(math.Floor(r.Y))
	x1 := int(math.Ceil(r.X + r.Width))
	y1 := int(math.Ceil(r.Y + r.Height))
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, nativeWidth, nativeHeight))
}

// RasterGeometry describes one rendered surface: its native pixel
// dimensions and its current on-screen bounding box. Zoom, scroll and
// re-render all change it, so callers obtain it fresh per extraction.
type RasterGeometry struct {
	NativeWidth  int
	NativeHeight int

	DisplayLeft   float64
	DisplayTop    float64
	DisplayWidth  float64
	DisplayHeight float64
}

// DisplayBounds returns the surface's own display-space rectangle, origin
// at zero. Pointer positions are tested against this after translation.
func (g RasterGeometry) DisplayBounds() Rect {
	return Rect{Width: g.DisplayWidth, Height: g.DisplayHeight}
}

// Valid reports whether the geometry can support a display-to-pixel
// mapping at all.
func (g RasterGeometry) Valid() bool {
	return g.NativeWidth > 0 && g.NativeHeight > 0 && g.DisplayWidth > 0 && g.DisplayHeight > 0
}
