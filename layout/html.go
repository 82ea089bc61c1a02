package layout

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/RAZZKCODE/pdf-edit-print/fonts"
)

// RenderHTML lays out an HTML document.
func (e *Engine) RenderHTML(source string) error {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	return e.walkHTML(doc)
}

func (e *Engine) walkHTML(n *html.Node) error {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			// The heading renderer consumes the subtree's text.
			return e.renderHTMLHeading(n)
		case atom.P:
			return e.renderHTMLParagraph(n)
		case atom.Li:
			return e.renderHTMLListItem(n)
		case atom.Pre:
			return e.renderHTMLPre(n)
		case atom.Hr:
			e.renderRule()
			return nil
		case atom.Math:
			return e.renderMath(n)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := e.walkHTML(c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) renderHTMLHeading(n *html.Node) error {
	level := 4
	switch n.DataAtom {
	case atom.H1:
		level = 1
	case atom.H2:
		level = 2
	case atom.H3:
		level = 3
	}

	size := e.FontSize * 2.0
	if level == 2 {
		size = e.FontSize * 1.5
	} else if level >= 3 {
		size = e.FontSize * 1.25
	}

	if err := e.renderTextWrapped(extractText(n), e.Margins.Left, fonts.Bold, size, size*e.LineHeight); err != nil {
		return err
	}
	e.renderParagraphSpacing()
	return nil
}

func (e *Engine) renderHTMLParagraph(n *html.Node) error {
	if err := e.renderTextWrapped(extractText(n), e.Margins.Left, fonts.Regular, e.FontSize, e.FontSize*e.LineHeight); err != nil {
		return err
	}
	e.renderParagraphSpacing()
	return nil
}

func (e *Engine) renderHTMLListItem(n *html.Node) error {
	lineHeight := e.FontSize * e.LineHeight
	e.checkPageBreak(lineHeight)
	if err := e.drawLine("•", e.Margins.Left, fonts.Regular, e.FontSize, 0); err != nil {
		return err
	}

	indent := 15.0
	return e.renderTextWrapped(extractText(n), e.Margins.Left+indent, fonts.Regular, e.FontSize, lineHeight)
}

func (e *Engine) renderHTMLPre(n *html.Node) error {
	lineHeight := e.FontSize * e.LineHeight
	for _, line := range strings.Split(strings.Trim(rawText(n), "\n"), "\n") {
		if err := e.drawLine(line, e.Margins.Left, fonts.Mono, e.FontSize, lineHeight); err != nil {
			return err
		}
	}
	e.renderParagraphSpacing()
	return nil
}

// extractText collects the text content of a subtree, trimmed.
func extractText(n *html.Node) string {
	return strings.TrimSpace(rawText(n))
}

func rawText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}
