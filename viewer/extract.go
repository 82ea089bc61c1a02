package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/RAZZKCODE/pdf-edit-print/coords"
	"github.com/RAZZKCODE/pdf-edit-print/extensions"
	"github.com/RAZZKCODE/pdf-edit-print/extractor"
	"github.com/RAZZKCODE/pdf-edit-print/geo"
	"github.com/RAZZKCODE/pdf-edit-print/observability"
	"github.com/RAZZKCODE/pdf-edit-print/ocr"
	"github.com/RAZZKCODE/pdf-edit-print/viewport"
)

// extractLocked materializes the extraction product for the current
// state: the significant selection cropped to native pixels, or a copy
// of the whole surface when no usable selection exists. Sub-threshold
// rectangles, selections that map to nothing and regions that round to
// zero area all take the whole-page fallback; the caller never sees a
// partial or corrupt image. Callers hold s.mu.
func (s *Session) extractLocked() (*image.NRGBA, geo.PixelRect, bool, error) {
	if s.surface == nil {
		return nil, geo.PixelRect{}, false, ErrNoDocument
	}
	g := s.surface.Geometry
	r, ok := s.state.Selection.Rect()
	if !ok || !viewport.Significant(r) {
		return extractor.WholePage(s.surface.Image), geo.PixelRect{}, false, nil
	}
	px, ok := coords.MapToPixelSpace(r, g)
	if !ok {
		s.log.Debug("selection maps to nothing, extracting whole page")
		return extractor.WholePage(s.surface.Image), geo.PixelRect{}, false, nil
	}
	crop, err := extractor.Crop(s.surface.Image, px)
	if err != nil {
		if errors.Is(err, extractor.ErrEmptyRegion) {
			return extractor.WholePage(s.surface.Image), geo.PixelRect{}, false, nil
		}
		return nil, geo.PixelRect{}, false, err
	}
	return crop, px, true, nil
}

// encodeLocked runs the extraction chain, encodes the result and fires
// the extract-phase extensions. Callers hold s.mu.
func (s *Session) encodeLocked(f extractor.Format) ([]byte, bool, error) {
	_, span := s.tracer.StartSpan(s.ctx, "viewer.extract")
	defer span.Finish()
	start := time.Now()

	img, px, cropped, err := s.extractLocked()
	if err != nil {
		span.SetError(err)
		return nil, false, err
	}
	data, err := extractor.Encode(img, f)
	if err != nil {
		span.SetError(err)
		return nil, false, err
	}

	snap := s.snapshotLocked()
	snap.Crop = img
	snap.CropRect = px
	if herr := s.hub.Run(s.ctx, extensions.PhaseExtract, snap); herr != nil {
		s.log.Warn("extract extensions", observability.Error("error", herr))
	}

	span.SetTag(observability.MetricExtractTime, time.Since(start))
	span.SetTag(observability.MetricEncodedBytes, len(data))
	s.emitLocked(ExtractedEvent{Format: f, Bytes: len(data), Cropped: cropped})
	return data, cropped, nil
}

// Extract encodes the current selection, or the whole page when nothing
// useful is selected. Format is "png" or "jpeg".
func (s *Session) Extract(format string) ([]byte, error) {
	f, err := extractor.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, _, err := s.encodeLocked(f)
	return data, err
}

// Download runs Extract and hands the result to the download sink. It
// returns the suggested filename.
func (s *Session) Download(format string) (string, error) {
	f, err := extractor.ParseFormat(format)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dload == nil {
		return "", errors.New("no download sink configured")
	}
	data, cropped, err := s.encodeLocked(f)
	if err != nil {
		return "", err
	}
	name := suggestedName(s.name, s.state.Page(), cropped, f)
	if err := s.dload.Download(name, data); err != nil {
		return "", err
	}
	s.emitLocked(DownloadedEvent{Name: name, Bytes: len(data)})
	return name, nil
}

// Print sends the current selection to the print sink as an encoded
// image, or tells the sink to print the page as rendered when no
// significant selection exists.
func (s *Session) Print() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return ErrNoDocument
	}
	if s.print == nil {
		return errors.New("no print sink configured")
	}
	img, _, cropped, err := s.extractLocked()
	if err != nil {
		return err
	}
	page := s.state.Page()
	if !cropped {
		if err := s.print.PrintPage(page); err != nil {
			return err
		}
		s.emitLocked(PrintedEvent{Page: page})
		return nil
	}
	data, err := extractor.Encode(img, extractor.LosslessRGBA)
	if err != nil {
		return err
	}
	if err := s.print.PrintImage(data); err != nil {
		return err
	}
	s.emitLocked(PrintedEvent{Page: page, Cropped: true})
	return nil
}

// RecognizeSelection runs OCR over the current selection, or the whole
// page when nothing useful is selected. Recognition runs outside the
// session lock.
func (s *Session) RecognizeSelection(ctx context.Context) (ocr.Result, error) {
	s.mu.Lock()
	img, _, _, err := s.extractLocked()
	page := 0
	if s.state != nil {
		page = s.state.Page()
	}
	engine := s.ocr
	s.mu.Unlock()
	if err != nil {
		return ocr.Result{}, err
	}
	if engine == nil {
		engine = ocr.DefaultEngine()
	}

	_, span := s.tracer.StartSpan(ctx, "viewer.recognize")
	defer span.Finish()
	start := time.Now()

	in, err := ocr.InputFromImage(img, page)
	if err != nil {
		span.SetError(err)
		return ocr.Result{}, err
	}
	res, err := engine.Recognize(ctx, in)
	if err != nil {
		span.SetError(err)
		return ocr.Result{}, fmt.Errorf("recognize selection: %w", err)
	}
	span.SetTag(observability.MetricOCRTime, time.Since(start))
	return res, nil
}

// suggestedName derives a download filename from the document name, the
// page and whether the payload is a crop.
func suggestedName(docName string, page int, cropped bool, f extractor.Format) string {
	base := strings.TrimSuffix(filepath.Base(docName), filepath.Ext(docName))
	if base == "" || base == "." {
		base = "page"
	}
	name := fmt.Sprintf("%s-p%d", base, page)
	if cropped {
		name += "-crop"
	}
	return name + extractor.FilenameExt(f)
}
