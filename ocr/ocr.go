// Package ocr defines the contract for plugging text recognition
// engines (for example, Tesseract or a cloud service) into the
// viewer's extraction pipeline. The interfaces are small and
// transport-agnostic so engines can be backed by native libraries or
// remote APIs without leaking provider concerns into callers.
package ocr

import (
	"context"

	"github.com/RAZZKCODE/pdf-edit-print/geo"
)

// ImageFormat identifies the content type of a recognition input.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Input encapsulates a single encoded image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the
	// corresponding Result.
	ID string
	// Image is the encoded payload in the format declared by Format.
	Image []byte
	// Format declares the image content type.
	Format ImageFormat
	// Page links the input back to the 1-based viewer page the raster
	// came from.
	Page int
	// DPI carries the effective dots-per-inch. Providers use it for
	// scaling heuristics; zero means unknown.
	DPI int
	// Languages lists trained-data hints such as "eng" or "deu".
	Languages []string
	// Region restricts recognition to a subsection of the image in
	// native pixel coordinates. Nil processes the full image.
	Region *geo.PixelRect
	// Metadata passes engine-specific knobs through without
	// hard-coding them into the API surface.
	Metadata map[string]string
}

// TextWord is a single recognized token.
type TextWord struct {
	Text       string
	Bounds     geo.PixelRect
	Confidence float64
}

// TextLine groups words that share a baseline.
type TextLine struct {
	Text       string
	Bounds     geo.PixelRect
	Words      []TextWord
	Confidence float64
}

// TextBlock aggregates lines that form a logical block.
type TextBlock struct {
	Text       string
	Bounds     geo.PixelRect
	Lines      []TextLine
	Confidence float64
}

// Result captures recognition output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText is the linearized text extracted from the image.
	PlainText string
	// Blocks carries the structured layout with positional metadata.
	Blocks []TextBlock
	// Language is the dominant language detected, if known.
	Language string
}

// Engine is the simplest provider contract: one image in, one result
// out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// BatchEngine handles multiple images in one call, for providers that
// amortize setup costs.
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error)
}
