package viewer

import (
	"github.com/RAZZKCODE/pdf-edit-print/extractor"
	"github.com/RAZZKCODE/pdf-edit-print/geo"
	"github.com/RAZZKCODE/pdf-edit-print/viewport"
)

type EventType int

const (
	EventDocumentOpened EventType = iota
	EventOpenFailed
	EventPassphraseNeeded
	EventPageChanged
	EventZoomChanged
	EventSelectionChanged
	EventExtracted
	EventDownloaded
	EventPrinted
	EventAlert
)

func (t EventType) String() string {
	switch t {
	case EventDocumentOpened:
		return "document opened"
	case EventOpenFailed:
		return "open failed"
	case EventPassphraseNeeded:
		return "passphrase needed"
	case EventPageChanged:
		return "page changed"
	case EventZoomChanged:
		return "zoom changed"
	case EventSelectionChanged:
		return "selection changed"
	case EventExtracted:
		return "extracted"
	case EventDownloaded:
		return "downloaded"
	case EventPrinted:
		return "printed"
	case EventAlert:
		return "alert"
	}
	return "unknown"
}

// Event is a session state change announced on the event stream.
// Consumers type-switch on the concrete event structs.
type Event interface{ Type() EventType }

// DocumentOpenedEvent fires when a source finishes opening.
type DocumentOpenedEvent struct {
	Name      string
	PageCount int
}

func (DocumentOpenedEvent) Type() EventType { return EventDocumentOpened }

// OpenFailedEvent fires when a source cannot be opened.
type OpenFailedEvent struct {
	Name string
	Err  error
}

func (OpenFailedEvent) Type() EventType { return EventOpenFailed }

// PassphraseNeededEvent fires when an open pauses for credentials. The
// consumer answers with SubmitPassphrase or CancelPassphrase.
type PassphraseNeededEvent struct {
	Attempt    int
	LastFailed bool
}

func (PassphraseNeededEvent) Type() EventType { return EventPassphraseNeeded }

// PageChangedEvent fires after a successful page move.
type PageChangedEvent struct{ Page int }

func (PageChangedEvent) Type() EventType { return EventPageChanged }

// ZoomChangedEvent fires after the applied zoom factor changes.
type ZoomChangedEvent struct{ Zoom float64 }

func (ZoomChangedEvent) Type() EventType { return EventZoomChanged }

// SelectionChangedEvent fires on every selection transition, including
// the implicit clear on navigation and zoom.
type SelectionChangedEvent struct {
	State       viewport.DragState
	Rect        geo.Rect
	Significant bool
}

func (SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// ExtractedEvent fires after a region or page is encoded.
type ExtractedEvent struct {
	Format  extractor.Format
	Bytes   int
	Cropped bool
}

func (ExtractedEvent) Type() EventType { return EventExtracted }

// DownloadedEvent fires after an extraction is handed to the download
// sink.
type DownloadedEvent struct {
	Name  string
	Bytes int
}

func (DownloadedEvent) Type() EventType { return EventDownloaded }

// PrintedEvent fires after a print request is handed to the print sink.
type PrintedEvent struct {
	Page    int
	Cropped bool
}

func (PrintedEvent) Type() EventType { return EventPrinted }

// AlertEvent carries a message a script asked to surface.
type AlertEvent struct{ Message string }

func (AlertEvent) Type() EventType { return EventAlert }
