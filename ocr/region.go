package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	_ "image/jpeg"

	"github.com/RAZZKCODE/pdf-edit-print/extractor"
	"github.com/RAZZKCODE/pdf-edit-print/geo"
)

// RegionRecognizer narrows any engine to a fixed pixel region by
// cropping inputs before delegation. Providers with native region
// support can be used directly instead.
type RegionRecognizer struct {
	engine Engine
	region geo.PixelRect
}

func NewRegionRecognizer(engine Engine, region geo.PixelRect) *RegionRecognizer {
	return &RegionRecognizer{engine: engine, region: region}
}

func (r *RegionRecognizer) Name() string { return r.engine.Name() + "+region" }

func (r *RegionRecognizer) Recognize(ctx context.Context, in Input) (Result, error) {
	if r.region.Empty() {
		return r.engine.Recognize(ctx, in)
	}

	img, _, err := image.Decode(bytes.NewReader(in.Image))
	if err != nil {
		return Result{}, fmt.Errorf("decode for region: %w", err)
	}
	cropped, err := extractor.Crop(img, r.region)
	if err != nil {
		return Result{}, fmt.Errorf("crop region: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return Result{}, fmt.Errorf("encode region: %w", err)
	}

	in.Image = buf.Bytes()
	in.Format = ImageFormatPNG
	in.Region = nil
	return r.engine.Recognize(ctx, in)
}
