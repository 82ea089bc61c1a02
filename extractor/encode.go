package extractor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Format selects the output encoding for an extracted buffer.
type Format int

const (
	// LosslessRGBA encodes to PNG, preserving the alpha channel.
	LosslessRGBA Format = iota
	// OpaqueRGB composites onto white and encodes to JPEG.
	OpaqueRGB
)

func (f Format) String() string {
	switch f {
	case LosslessRGBA:
		return "png"
	case OpaqueRGB:
		return "jpeg"
	}
	return "unknown"
}

// ParseFormat resolves a format name as used by CLI flags and scripts.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "png":
		return LosslessRGBA, nil
	case "jpeg", "jpg":
		return OpaqueRGB, nil
	}
	return 0, fmt.Errorf("unknown image format %q", name)
}

// FilenameExt returns the filename extension for a format.
func FilenameExt(f Format) string {
	if f == OpaqueRGB {
		return ".jpg"
	}
	return ".png"
}

const jpegQuality = 92

// Encode serializes img in the requested format.
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case LosslessRGBA:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case OpaqueRGB:
		opts := &jpeg.Options{Quality: jpegQuality}
		if err := jpeg.Encode(&buf, flattenWhite(img), opts); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown image format %d", f)
	}
	return buf.Bytes(), nil
}

// flattenWhite composites src over an opaque white background, so regions
// the page left transparent print as paper rather than black. It runs for
// every opaque encode, whether or not the buffer contains transparency,
// keeping the output deterministic.
func flattenWhite(src image.Image) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Over)
	return out
}

// Thumbnail scales img down so its longer edge is at most maxEdge,
// preserving aspect ratio. Used for previews only; the crop path never
// resamples.
func Thumbnail(src image.Image, maxEdge int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return WholePage(src)
	}
	longest := w
	if h > longest {
		longest = h
	}
	scale := float64(maxEdge) / float64(longest)
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
