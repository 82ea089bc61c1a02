// Package coords maps rectangles drawn in display space onto the native
// pixel grid of a rendered raster surface.
package coords

import (
	"errors"
	"math"

	"github.com/RAZZKCODE/pdf-edit-print/geo"
)

// Matrix is a 2D affine transform in the form [a b c d tx ty], applied as
// x' = a*x + c*y + tx, y' = b*x + d*y + ty.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Translate returns a transform moving points by (tx, ty).
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a transform scaling points by (sx, sy).
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply returns the transform equivalent to applying m first, then o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Transform applies the matrix to a point.
func (m Matrix) Transform(p geo.Point) geo.Point {
	return geo.Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Inverse returns the inverse transform, or an error when the matrix is
// singular.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// SurfaceRelative translates a point measured in the surface's container
// frame into the surface's own frame. Selection rectangles must always be
// built from surface-relative points; mixing the two frames is the classic
// source of misaligned crops, so the translation happens in exactly one
// place.
func SurfaceRelative(p geo.Point, g geo.RasterGeometry) geo.Point {
	return Translate(-g.DisplayLeft, -g.DisplayTop).Transform(p)
}

// MapToPixelSpace converts a surface-relative display rectangle into the
// raster's native pixel grid, clipped to the raster bounds.
//
// The returned rectangle satisfies X >= 0, Y >= 0, X+Width <= nativeWidth
// and Y+Height <= nativeHeight. The second return value is false when the
// geometry cannot support a mapping or the rectangle is fully clipped,
// meaning there is nothing to extract.
func MapToPixelSpace(r geo.Rect, g geo.RasterGeometry) (geo.PixelRect, bool) {
	if !g.Valid() {
		return geo.PixelRect{}, false
	}

	scale := Scale(
		float64(g.NativeWidth)/g.DisplayWidth,
		float64(g.NativeHeight)/g.DisplayHeight,
	)
	origin := scale.Transform(geo.Point{X: r.X, Y: r.Y})
	extent := scale.Transform(geo.Point{X: r.Width, Y: r.Height})

	px := math.Max(0, origin.X)
	py := math.Max(0, origin.Y)

	// A negative origin consumes part of the extent before clamping.
	if origin.X < 0 {
		extent.X += origin.X
	}
	if origin.Y < 0 {
		extent.Y += origin.Y
	}

	pw := math.Min(extent.X, float64(g.NativeWidth)-px)
	ph := math.Min(extent.Y, float64(g.NativeHeight)-py)
	if pw <= 0 || ph <= 0 {
		return geo.PixelRect{}, false
	}

	return geo.PixelRect{X: px, Y: py, Width: pw, Height: ph}, true
}
