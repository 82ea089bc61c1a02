// Package fonts loads the embedded faces the layout engine draws with,
// and measures shaped text runs for line breaking.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Style selects one of the built-in faces.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	Mono
)

func (s Style) String() string {
	switch s {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Mono:
		return "mono"
	}
	return "unknown"
}

// Library holds the parsed fonts plus a face cache keyed by style and
// size. Safe for concurrent use.
type Library struct {
	mu     sync.Mutex
	fonts  map[Style]*opentype.Font
	faces  map[faceKey]font.Face
	shaper *measurer
}

type faceKey struct {
	style Style
	size  float64
}

var builtins = map[Style][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
	Italic:  goitalic.TTF,
	Mono:    gomono.TTF,
}

// NewLibrary parses the embedded Go fonts.
func NewLibrary() (*Library, error) {
	lib := &Library{
		fonts: make(map[Style]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
	for style, data := range builtins {
		ft, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", style, err)
		}
		lib.fonts[style] = ft
	}
	m, err := newMeasurer()
	if err != nil {
		return nil, err
	}
	lib.shaper = m
	return lib, nil
}

// Face returns a drawing face at the given pixel size. Faces are cached;
// the returned face must not be used concurrently with other faces of the
// same style and size, which the layout engine's single-goroutine use
// guarantees.
func (l *Library) Face(style Style, size float64) (font.Face, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := faceKey{style, size}
	if f, ok := l.faces[key]; ok {
		return f, nil
	}
	ft, ok := l.fonts[style]
	if !ok {
		return nil, fmt.Errorf("no font for style %v", style)
	}
	f, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build %s face at %g: %w", style, size, err)
	}
	l.faces[key] = f
	return f, nil
}

// Measure returns the advance width, in pixels, of text shaped at the
// given style and size.
func (l *Library) Measure(text string, style Style, size float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shaper.measure(text, style, size)
}

// LineHeight returns the vertical distance between baselines for a face,
// in pixels.
func (l *Library) LineHeight(style Style, size float64) (float64, error) {
	face, err := l.Face(style, size)
	if err != nil {
		return 0, err
	}
	m := face.Metrics()
	return float64(m.Height) / 64, nil
}
