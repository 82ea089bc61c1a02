// Package layout renders structured content (Markdown, HTML, LaTeX math)
// onto raster page canvases for the viewer to display.
package layout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/RAZZKCODE/pdf-edit-print/fonts"
	"github.com/RAZZKCODE/pdf-edit-print/observability"
)

// Margins defines page margins in pixels.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Engine lays text out onto fixed-size pages, breaking to a new page when
// the cursor passes the bottom margin.
type Engine struct {
	lib *fonts.Library
	log observability.Logger

	FontSize   float64
	LineHeight float64 // multiplier, e.g. 1.4
	Margins    Margins

	pageWidth  int
	pageHeight int

	pages   []*image.NRGBA
	current *image.NRGBA
	cursorY float64
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithFontSize sets the body font size in pixels.
func WithFontSize(size float64) Option {
	return func(e *Engine) { e.FontSize = size }
}

// WithLineHeight sets the line height multiplier.
func WithLineHeight(h float64) Option {
	return func(e *Engine) { e.LineHeight = h }
}

// WithMargins sets the page margins.
func WithMargins(m Margins) Option {
	return func(e *Engine) { e.Margins = m }
}

// WithPageSize sets the page dimensions in pixels.
func WithPageSize(width, height int) Option {
	return func(e *Engine) {
		e.pageWidth = width
		e.pageHeight = height
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates a layout engine with optional configuration. Defaults
// are US Letter at 96 dpi with a 13px body face.
func NewEngine(lib *fonts.Library, opts ...Option) *Engine {
	e := &Engine{
		lib:        lib,
		log:        observability.NopLogger{},
		FontSize:   13,
		LineHeight: 1.4,
		Margins:    Margins{Top: 48, Bottom: 48, Left: 48, Right: 48},
		pageWidth:  816,
		pageHeight: 1056,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageSize returns the page dimensions in pixels.
func (e *Engine) PageSize() (int, int) { return e.pageWidth, e.pageHeight }

// Pages returns every page rendered so far, including the one in
// progress.
func (e *Engine) Pages() []*image.NRGBA {
	if e.current != nil {
		return append(append([]*image.NRGBA(nil), e.pages...), e.current)
	}
	return e.pages
}

// Reset discards all rendered pages.
func (e *Engine) Reset() {
	e.pages = nil
	e.current = nil
	e.cursorY = 0
}

func (e *Engine) ensurePage() {
	if e.current == nil {
		e.newPage()
	}
}

func (e *Engine) newPage() {
	if e.current != nil {
		e.pages = append(e.pages, e.current)
	}
	page := image.NewNRGBA(image.Rect(0, 0, e.pageWidth, e.pageHeight))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	e.current = page
	e.cursorY = e.Margins.Top
}

// checkPageBreak opens a fresh page when the next line would cross the
// bottom margin.
func (e *Engine) checkPageBreak(height float64) {
	e.ensurePage()
	if e.cursorY+height > float64(e.pageHeight)-e.Margins.Bottom {
		e.newPage()
	}
}

// drawLine draws one already-measured line of text with its baseline
// derived from the current cursor, then advances the cursor.
func (e *Engine) drawLine(text string, x float64, style fonts.Style, size, lineHeight float64) error {
	e.checkPageBreak(lineHeight)
	face, err := e.lib.Face(style, size)
	if err != nil {
		return fmt.Errorf("layout face: %w", err)
	}
	ascent := float64(face.Metrics().Ascent) / 64
	d := font.Drawer{
		Dst:  e.current,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * 64)),
			Y: fixed.Int26_6(math.Round((e.cursorY + ascent) * 64)),
		},
	}
	d.DrawString(text)
	e.cursorY += lineHeight
	return nil
}

// renderTextWrapped wraps text to the content width using shaped
// measurements and draws it line by line.
func (e *Engine) renderTextWrapped(text string, x float64, style fonts.Style, size, lineHeight float64) error {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	maxWidth := float64(e.pageWidth) - e.Margins.Right - x
	currentLine := words[0]

	for _, word := range words[1:] {
		if e.lib.Measure(currentLine+" "+word, style, size) <= maxWidth {
			currentLine += " " + word
			continue
		}
		if err := e.drawLine(currentLine, x, style, size, lineHeight); err != nil {
			return err
		}
		currentLine = word
	}
	return e.drawLine(currentLine, x, style, size, lineHeight)
}

func (e *Engine) renderParagraphSpacing() {
	if e.current != nil {
		e.cursorY += e.FontSize * e.LineHeight * 0.5
	}
}

// renderRule draws a horizontal rule across the content width.
func (e *Engine) renderRule() {
	lineHeight := e.FontSize * e.LineHeight
	e.checkPageBreak(lineHeight)
	y := int(e.cursorY + lineHeight/2)
	for x := int(e.Margins.Left); x < e.pageWidth-int(e.Margins.Right); x++ {
		e.current.SetNRGBA(x, y, color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff})
	}
	e.cursorY += lineHeight
}
