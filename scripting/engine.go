// Package scripting runs user automation scripts against an open
// document session.
package scripting

import (
	"context"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute runs a script and returns its final value.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterViewer binds the viewer API into the engine's global
	// scope.
	RegisterViewer(v Viewer) error
}

// Viewer exposes the document session to scripts. It is a controlled
// surface: scripts hold no reference to the session itself, only to
// bindings that call through this interface.
type Viewer interface {
	Page() int
	PageCount() int
	Zoom() float64

	GoToPage(page int) bool
	NextPage() bool
	PrevPage() bool

	SetZoom(zoom float64) float64
	ZoomIn() float64
	ZoomOut() float64
	ResetZoom() float64

	// Select places a committed selection as one synthetic gesture.
	Select(x, y, w, h float64) bool
	ClearSelection()

	// Extract encodes the current selection, or the whole page when
	// nothing useful is selected. Format is "png" or "jpeg".
	Extract(format string) ([]byte, error)

	// Download runs Extract and hands the result to the download sink.
	// It returns the suggested filename.
	Download(format string) (string, error)

	// Print sends the current selection or page to the print sink.
	Print() error

	SubmitPassphrase(pass string) error
	CancelPassphrase() error

	// Alert surfaces a message to the user.
	Alert(message string)
}
