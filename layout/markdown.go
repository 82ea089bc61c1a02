package layout

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/RAZZKCODE/pdf-edit-print/fonts"
)

// RenderMarkdown lays out a markdown document using goldmark.
func (e *Engine) RenderMarkdown(source string) error {
	md := goldmark.New()
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	return e.walkMarkdown(doc, src)
}

func (e *Engine) walkMarkdown(node ast.Node, source []byte) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		var err error
		switch n := child.(type) {
		case *ast.Heading:
			err = e.renderMarkdownHeading(n, source)
		case *ast.Paragraph:
			err = e.renderMarkdownParagraph(n, source)
		case *ast.List:
			err = e.walkMarkdown(n, source)
		case *ast.ListItem:
			err = e.renderMarkdownListItem(n, source)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			err = e.renderMarkdownCode(n, source)
		case *ast.Blockquote:
			err = e.renderMarkdownQuote(n, source)
		case *ast.ThematicBreak:
			e.renderRule()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) renderMarkdownHeading(n *ast.Heading, source []byte) error {
	size := e.FontSize * 2.0
	if n.Level == 2 {
		size = e.FontSize * 1.5
	} else if n.Level >= 3 {
		size = e.FontSize * 1.25
	}

	if err := e.renderTextWrapped(string(n.Text(source)), e.Margins.Left, fonts.Bold, size, size*e.LineHeight); err != nil {
		return err
	}
	e.renderParagraphSpacing()
	return nil
}

func (e *Engine) renderMarkdownParagraph(n *ast.Paragraph, source []byte) error {
	// Concatenate the paragraph's text segments; soft breaks in the
	// source collapse to spaces.
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.Write(child.Text(source))
	}

	if err := e.renderTextWrapped(sb.String(), e.Margins.Left, fonts.Regular, e.FontSize, e.FontSize*e.LineHeight); err != nil {
		return err
	}
	e.renderParagraphSpacing()
	return nil
}

func (e *Engine) renderMarkdownListItem(n *ast.ListItem, source []byte) error {
	// List items usually wrap their content in a paragraph or text
	// block; take the first child's text.
	var content string
	if child := n.FirstChild(); child != nil {
		content = string(child.Text(source))
	}

	lineHeight := e.FontSize * e.LineHeight
	e.checkPageBreak(lineHeight)
	if err := e.drawLine("•", e.Margins.Left, fonts.Regular, e.FontSize, 0); err != nil {
		return err
	}

	indent := 15.0
	return e.renderTextWrapped(content, e.Margins.Left+indent, fonts.Regular, e.FontSize, lineHeight)
}

func (e *Engine) renderMarkdownCode(n ast.Node, source []byte) error {
	lineHeight := e.FontSize * e.LineHeight
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(source)), "\n")
		if err := e.drawLine(line, e.Margins.Left, fonts.Mono, e.FontSize, lineHeight); err != nil {
			return err
		}
	}
	e.renderParagraphSpacing()
	return nil
}

func (e *Engine) renderMarkdownQuote(n *ast.Blockquote, source []byte) error {
	indent := 15.0
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if p, ok := child.(*ast.Paragraph); ok {
			if err := e.renderTextWrapped(string(p.Text(source)), e.Margins.Left+indent, fonts.Italic, e.FontSize, e.FontSize*e.LineHeight); err != nil {
				return err
			}
		}
	}
	e.renderParagraphSpacing()
	return nil
}
