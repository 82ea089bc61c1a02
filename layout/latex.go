package layout

import (
	"bytes"
	"fmt"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
)

// RenderLaTeX lays out a LaTeX math expression by converting it to
// MathML first.
func (e *Engine) RenderLaTeX(latex string) error {
	// Wrap in display math delimiters for goldmark processing.
	source := "$$" + latex + "$$"

	md := goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return fmt.Errorf("convert latex: %w", err)
	}

	return e.RenderHTML(buf.String())
}
