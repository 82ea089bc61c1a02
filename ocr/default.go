package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

var defaultEngine Engine = &noopEngine{}

// DefaultEngine returns the process-wide recognition engine. It is the
// noop engine until a provider package registers itself.
func DefaultEngine() Engine {
	return defaultEngine
}

// SetDefaultEngine replaces the process-wide recognition engine.
func SetDefaultEngine(engine Engine) {
	defaultEngine = engine
}

// InputFromImage encodes a page raster, or a crop of one, as a PNG
// recognition input.
func InputFromImage(img image.Image, page int, opts ...InputOption) (Input, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode recognition input: %w", err)
	}
	in := Input{
		ID:     fmt.Sprintf("page-%d", page),
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
		Page:   page,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

// RecognizeAll runs every input through the engine, using batch
// support when the provider offers it.
func RecognizeAll(ctx context.Context, engine Engine, inputs []Input) ([]Result, error) {
	if b, ok := engine.(BatchEngine); ok {
		return b.RecognizeBatch(ctx, inputs)
	}
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := engine.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

type noopEngine struct{}

func (n noopEngine) Name() string {
	return "noop"
}

func (n noopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}
