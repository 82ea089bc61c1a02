package extensions

import (
	"context"
	"fmt"
	"image"

	"github.com/RAZZKCODE/pdf-edit-print/ocr"
)

// TextRecognizer runs OCR over extracted crops. It prefers the crop
// image when one is present and falls back to the full surface.
type TextRecognizer struct {
	engine   ocr.Engine
	opts     []ocr.InputOption
	onResult func(ocr.Result)
	results  []ocr.Result
}

// RecognizerOption configures a TextRecognizer.
type RecognizerOption func(*TextRecognizer)

// WithEngine sets the OCR engine. Defaults to the registered default.
func WithEngine(engine ocr.Engine) RecognizerOption {
	return func(r *TextRecognizer) { r.engine = engine }
}

// WithInputOptions passes input options to every recognition request.
func WithInputOptions(opts ...ocr.InputOption) RecognizerOption {
	return func(r *TextRecognizer) { r.opts = opts }
}

// WithResultHandler invokes fn for each recognition result.
func WithResultHandler(fn func(ocr.Result)) RecognizerOption {
	return func(r *TextRecognizer) { r.onResult = fn }
}

func NewTextRecognizer(opts ...RecognizerOption) *TextRecognizer {
	r := &TextRecognizer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TextRecognizer) Name() string  { return "text-recognizer" }
func (r *TextRecognizer) Phase() Phase  { return PhaseExtract }
func (r *TextRecognizer) Priority() int { return 100 }

func (r *TextRecognizer) Execute(ctx context.Context, snap *Snapshot) error {
	var img image.Image
	switch {
	case snap.Crop != nil:
		img = snap.Crop
	case snap.Surface != nil:
		img = snap.Surface
	default:
		return nil
	}

	engine := r.engine
	if engine == nil {
		engine = ocr.DefaultEngine()
	}

	in, err := ocr.InputFromImage(img, snap.Page, r.opts...)
	if err != nil {
		return fmt.Errorf("prepare ocr input: %w", err)
	}
	res, err := engine.Recognize(ctx, in)
	if err != nil {
		return fmt.Errorf("recognize page %d: %w", snap.Page, err)
	}

	r.results = append(r.results, res)
	if r.onResult != nil {
		r.onResult(res)
	}
	return nil
}

// Results returns a copy of all recognition results so far.
func (r *TextRecognizer) Results() []ocr.Result {
	out := make([]ocr.Result, len(r.results))
	copy(out, r.results)
	return out
}
