package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/RAZZKCODE/pdf-edit-print/geo"
	"github.com/RAZZKCODE/pdf-edit-print/observability"
)

// Magic prefixes for the raster formats the engine accepts.
var (
	magicPNG  = []byte{0x89, 'P', 'N', 'G'}
	magicJPEG = []byte{0xff, 0xd8}
	magicGIF  = []byte("GIF8")
	magicBMP  = []byte("BM")
	magicRIFF = []byte("RIFF")
	magicWEBP = []byte("WEBP")
	tiffLE    = []byte{'I', 'I', 0x2a, 0x00}
	tiffBE    = []byte{'M', 'M', 0x00, 0x2a}
)

// ImageEngine opens raster images. A still image becomes a single
// page; an animated GIF becomes one page per frame.
type ImageEngine struct {
	log observability.Logger
}

func NewImageEngine(log observability.Logger) *ImageEngine {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &ImageEngine{log: log}
}

func (e *ImageEngine) Detect(data []byte) bool {
	switch {
	case bytes.HasPrefix(data, magicPNG),
		bytes.HasPrefix(data, magicJPEG),
		bytes.HasPrefix(data, magicGIF),
		bytes.HasPrefix(data, magicBMP),
		bytes.HasPrefix(data, tiffLE),
		bytes.HasPrefix(data, tiffBE):
		return true
	case bytes.HasPrefix(data, magicRIFF):
		return len(data) >= 12 && bytes.Equal(data[8:12], magicWEBP)
	}
	return false
}

func (e *ImageEngine) Open(ctx context.Context, data []byte, ask AskFunc) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pages []*image.NRGBA
	if bytes.HasPrefix(data, magicGIF) {
		frames, err := decodeGIFFrames(data)
		if err != nil {
			return nil, fmt.Errorf("decode gif: %w", err)
		}
		pages = frames
	} else {
		img, err := decodeImage(data)
		if err != nil {
			return nil, err
		}
		pages = []*image.NRGBA{img}
	}

	e.log.Debug("image source opened", observability.Int("pages", len(pages)))
	return &rasterDocument{pages: pages}, nil
}

// decodeImage decodes a still image and normalizes it to NRGBA.
func decodeImage(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return toNRGBA(img), nil
}

// decodeGIFFrames composites each frame over its predecessors, one
// page per frame.
func decodeGIFFrames(data []byte) ([]*image.NRGBA, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	frames := make([]*image.NRGBA, 0, len(g.Image))
	for _, frame := range g.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		snap := image.NewNRGBA(canvas.Bounds())
		copy(snap.Pix, canvas.Pix)
		frames = append(frames, snap)
	}
	return frames, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == image.Pt(0, 0) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// rasterDocument serves pre-decoded rasters. Native dimensions stay
// constant across zoom; only the display dimensions stretch.
type rasterDocument struct {
	pages []*image.NRGBA
}

func (d *rasterDocument) PageCount() int { return len(d.pages) }

func (d *rasterDocument) RenderPage(ctx context.Context, page int, zoom float64) (*Surface, error) {
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
			DisplayWidth:  float64(b.Dx()) * zoom,
			DisplayHeight: float64(b.Dy()) * zoom,
		},
	}, nil
}

func (d *rasterDocument) Close() error {
	d.pages = nil
	return nil
}
