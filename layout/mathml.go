package layout

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/RAZZKCODE/pdf-edit-print/fonts"
)

// mathBox is a measured MathML subtree. Child offsets are relative to
// the parent's baseline, with y growing upward.
type mathBox struct {
	width    float64
	height   float64
	ascent   float64
	descent  float64
	children []*mathBox
	node     *html.Node
	x, y     float64
	text     string
	fontSize float64
}

// renderMath lays out a <math> element as a block.
func (e *Engine) renderMath(n *html.Node) error {
	box := e.measureMath(n, e.FontSize)
	if box == nil {
		return nil
	}

	e.checkPageBreak(box.height)

	baseline := e.cursorY + box.ascent
	if err := e.drawMathBox(box, e.Margins.Left, baseline); err != nil {
		return err
	}

	e.cursorY += box.height
	e.renderParagraphSpacing()
	return nil
}

func (e *Engine) measureMath(n *html.Node, fontSize float64) *mathBox {
	box := &mathBox{node: n, fontSize: fontSize}

	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return nil
		}
		box.text = text
		box.width = e.lib.Measure(text, fonts.Regular, fontSize)
		box.ascent = fontSize * 0.8
		box.descent = fontSize * 0.2
		box.height = box.ascent + box.descent
		return box
	}

	if n.Type != html.ElementNode {
		return nil
	}

	var children []*mathBox
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		fs := fontSize
		// Scripts render smaller than their base.
		if (n.Data == "msup" || n.Data == "msub") && len(children) > 0 {
			fs = fontSize * 0.7
		}
		childBox := e.measureMath(c, fs)
		if childBox != nil {
			children = append(children, childBox)
		}
	}
	box.children = children

	switch n.Data {
	case "mi", "mn", "mo", "mtext":
		if len(children) > 0 {
			c := children[0]
			box.width = c.width
			box.ascent = c.ascent
			box.descent = c.descent
			box.height = c.height
		}

	case "mfrac":
		if len(children) >= 2 {
			num, den := children[0], children[1]

			box.width = math.Max(num.width, den.width) + 4

			num.x = (box.width - num.width) / 2
			den.x = (box.width - den.width) / 2

			gap := 2.5
			num.y = num.descent + gap
			den.y = -(den.ascent + gap)

			box.ascent = num.y + num.ascent
			box.descent = -den.y + den.descent
			box.height = box.ascent + box.descent
		}

	case "msup":
		if len(children) >= 2 {
			base, sup := children[0], children[1]

			box.width = base.width + sup.width

			sup.x = base.width
			sup.y = base.ascent * 0.5

			box.ascent = math.Max(base.ascent, sup.y+sup.ascent)
			box.descent = base.descent
			box.height = box.ascent + box.descent
		}

	case "msub":
		if len(children) >= 2 {
			base, sub := children[0], children[1]

			box.width = base.width + sub.width

			sub.x = base.width
			sub.y = -base.descent * 0.5

			box.ascent = base.ascent
			box.descent = math.Max(base.descent, -sub.y+sub.descent)
			box.height = box.ascent + box.descent
		}

	case "msqrt":
		var w, asc, desc float64
		for _, c := range children {
			c.x = w + 5
			w += c.width
			asc = math.Max(asc, c.ascent)
			desc = math.Max(desc, c.descent)
		}
		box.width = w + 5
		box.ascent = asc + 2
		box.descent = desc
		box.height = box.ascent + box.descent

	default:
		// math, mrow and unknown containers lay out as a row.
		layoutRow(box)
	}

	return box
}

// layoutRow places children left to right on a shared baseline.
func layoutRow(box *mathBox) {
	var w, asc, desc float64
	for _, c := range box.children {
		c.x = w
		w += c.width
		asc = math.Max(asc, c.ascent)
		desc = math.Max(desc, c.descent)
	}
	box.width = w
	box.ascent = asc
	box.descent = desc
	box.height = asc + desc
}

// drawMathBox paints a measured box with its baseline at y. Child y
// offsets grow upward, so they subtract in raster space.
func (e *Engine) drawMathBox(box *mathBox, x, y float64) error {
	if box == nil {
		return nil
	}

	if box.text != "" {
		if err := e.drawMathText(box.text, x, y, box.fontSize); err != nil {
			return err
		}
	}

	if box.node != nil {
		switch box.node.Data {
		case "mfrac":
			lineY := y - 2
			e.strokeSegment(x, lineY, x+box.width, lineY)
		case "msqrt":
			lineY := y - box.ascent + 1
			e.strokeSegment(x+2, lineY, x+box.width, lineY)
			e.strokeSegment(x, y-box.ascent/2, x+2, y+box.descent)
			e.strokeSegment(x+2, y+box.descent, x+5, lineY)
		}
	}

	for _, c := range box.children {
		if err := e.drawMathBox(c, x+c.x, y-c.y); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) drawMathText(text string, x, baseline, size float64) error {
	face, err := e.lib.Face(fonts.Regular, size)
	if err != nil {
		return fmt.Errorf("layout face: %w", err)
	}
	d := font.Drawer{
		Dst:  e.current,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * 64)),
			Y: fixed.Int26_6(math.Round(baseline * 64)),
		},
	}
	d.DrawString(text)
	return nil
}

// strokeSegment draws a thin black line between two points on the
// current page.
func (e *Engine) strokeSegment(x0, y0, x1, y1 float64) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := int(math.Round(x0 + (x1-x0)*t))
		py := int(math.Round(y0 + (y1-y0)*t))
		e.current.SetNRGBA(px, py, color.NRGBA{A: 0xff})
	}
}
