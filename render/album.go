package render

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/RAZZKCODE/pdf-edit-print/observability"
	"github.com/RAZZKCODE/pdf-edit-print/recovery"
)

var magicZIP = []byte("PK\x03\x04")

// AlbumEngine opens a zip archive of images as a multi-page document,
// one page per member in name order. Damaged members are referred to
// the recovery strategy.
type AlbumEngine struct {
	images   *ImageEngine
	strategy recovery.Strategy
	log      observability.Logger
}

func NewAlbumEngine(images *ImageEngine, strategy recovery.Strategy, log observability.Logger) *AlbumEngine {
	if strategy == nil {
		strategy = recovery.NewStrictStrategy()
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	return &AlbumEngine{images: images, strategy: strategy, log: log}
}

func (e *AlbumEngine) Detect(data []byte) bool {
	return bytes.HasPrefix(data, magicZIP)
}

func (e *AlbumEngine) Open(ctx context.Context, data []byte, ask AskFunc) (Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open album: %w", err)
	}

	members := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members = append(members, f)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	var pages []*image.NRGBA
	for _, f := range members {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := readMember(f)
		if err != nil {
			loc := recovery.Location{Page: len(pages) + 1, Member: f.Name, Component: "album"}
			if e.strategy.OnError(ctx, err, loc) == recovery.ActionFail {
				return nil, fmt.Errorf("album member %q: %w", f.Name, err)
			}
			continue
		}
		pages = append(pages, img)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("open album: no decodable members")
	}

	e.log.Debug("album opened",
		observability.Int("members", len(members)),
		observability.Int("pages", len(pages)))
	return &rasterDocument{pages: pages}, nil
}

func readMember(f *zip.File) (*image.NRGBA, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return decodeImage(data)
}
