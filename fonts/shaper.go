package fonts

import (
	"bytes"
	"fmt"
	"math"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// measurer shapes text to obtain true advance widths. The wrapping code
// measures with shaped advances rather than naive per-rune estimates, so
// kerned Latin text and non-Latin scripts both break where they should.
type measurer struct {
	faces  map[Style]*gofont.Face
	shaper shaping.HarfbuzzShaper
}

func newMeasurer() (*measurer, error) {
	m := &measurer{faces: make(map[Style]*gofont.Face)}
	for style, data := range builtins {
		face, err := gofont.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s font for shaping: %w", style, err)
		}
		m.faces[style] = face
	}
	return m, nil
}

func (m *measurer) measure(text string, style Style, size float64) float64 {
	face := m.faces[style]
	if face == nil || text == "" || size <= 0 {
		return 0
	}
	runes := []rune(text)
	script := detectScript(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      face,
		Size:      fixed.Int26_6(math.Round(size * 64)),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}
	output := m.shaper.Shape(input)

	var advance fixed.Int26_6
	for _, g := range output.Glyphs {
		advance += g.XAdvance
	}
	return float64(advance) / 64
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	bestScript := language.Latin

	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			bestScript = script
		}
	}
	return bestScript
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	}
	return language.Unknown
}
