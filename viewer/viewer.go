// Package viewer binds the interaction pipeline together: one Session
// owns the open document, the viewport state, the rendered surface and
// the selection, and exposes the operations a UI or a script drives.
package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RAZZKCODE/pdf-edit-print/extensions"
	"github.com/RAZZKCODE/pdf-edit-print/fonts"
	"github.com/RAZZKCODE/pdf-edit-print/observability"
	"github.com/RAZZKCODE/pdf-edit-print/ocr"
	"github.com/RAZZKCODE/pdf-edit-print/passphrase"
	"github.com/RAZZKCODE/pdf-edit-print/recovery"
	"github.com/RAZZKCODE/pdf-edit-print/render"
	"github.com/RAZZKCODE/pdf-edit-print/viewport"
)

var (
	// ErrNoDocument is returned by operations that need an open document.
	ErrNoDocument = errors.New("no document open")

	// ErrSessionClosed is returned once Close has run.
	ErrSessionClosed = errors.New("session closed")

	// ErrOpenSuperseded resolves an in-flight open that a newer Open
	// replaced.
	ErrOpenSuperseded = errors.New("open superseded by a newer document")
)

// Config assembles a Session. Zero values select working defaults.
type Config struct {
	// Engines opens document sources. render.DefaultEngines when nil.
	Engines []render.Engine

	// Fonts and Recovery feed the default engine set and are ignored
	// when Engines is set explicitly.
	Fonts    *fonts.Library
	Recovery recovery.Strategy

	Log    observability.Logger
	Tracer observability.Tracer

	// Hub runs registered extensions at the open, render and extract
	// phases. A fresh empty hub when nil.
	Hub extensions.Hub

	// Print and Download receive extraction results. Operations that
	// need a missing sink fail.
	Print    PrintSink
	Download DownloadSink

	// OCR backs RecognizeSelection. The registered default when nil.
	OCR ocr.Engine

	// EventBuffer sizes the event stream. Emission never blocks; when
	// the consumer falls this far behind, events drop.
	EventBuffer int
}

// Session is the viewer state machine. All methods are safe for
// concurrent use; one document is open at a time.
type Session struct {
	mu      sync.Mutex
	engines []render.Engine
	log     observability.Logger
	tracer  observability.Tracer
	hub     extensions.Hub
	print   PrintSink
	dload   DownloadSink
	ocr     ocr.Engine

	events chan Event
	closed bool

	// gen identifies the current open sequence. An open goroutine
	// whose gen fell behind must not install its result.
	gen int

	// Per-document state, reset on every Open and on Close.
	ctx     context.Context
	name    string
	doc     render.Document
	gate    *passphrase.Gate
	state   *viewport.State
	surface *render.Surface

	// Display offset of the surface inside the container, applied to
	// every rendered geometry.
	originLeft float64
	originTop  float64
}

// NewSession builds a session from cfg.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Log == nil {
		cfg.Log = observability.NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NopTracer()
	}
	engines := cfg.Engines
	if engines == nil {
		var err error
		engines, err = render.DefaultEngines(render.Config{
			Fonts:    cfg.Fonts,
			Recovery: cfg.Recovery,
			Log:      cfg.Log,
		})
		if err != nil {
			return nil, err
		}
	}
	hub := cfg.Hub
	if hub == nil {
		hub = extensions.NewHub()
	}
	buf := cfg.EventBuffer
	if buf <= 0 {
		buf = 64
	}
	return &Session{
		engines: engines,
		log:     cfg.Log,
		tracer:  cfg.Tracer,
		hub:     hub,
		print:   cfg.Print,
		dload:   cfg.Download,
		ocr:     cfg.OCR,
		events:  make(chan Event, buf),
		ctx:     context.Background(),
	}, nil
}

// Events exposes the session's event stream. The channel closes when
// the session does.
func (s *Session) Events() <-chan Event { return s.events }

// RegisterExtension adds an extension to the session's hub.
func (s *Session) RegisterExtension(ext extensions.Extension) error {
	return s.hub.Register(ext)
}

// Open starts opening a source and returns immediately. The result
// arrives on the returned channel and as a DocumentOpenedEvent or
// OpenFailedEvent. A prior document, open or in flight, is discarded
// first: its gate closes, so stale passphrase resolutions no-op.
//
// Protected sources park the open until SubmitPassphrase or
// CancelPassphrase answers the PassphraseNeededEvent.
func (s *Session) Open(ctx context.Context, data []byte, name string) <-chan error {
	done := make(chan error, 1)
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- ErrSessionClosed
		return done
	}
	s.resetLocked()
	gen := s.gen
	var gate *passphrase.Gate
	gate = passphrase.NewGate(
		passphrase.WithLogger(s.log),
		passphrase.WithPrompt(func(req passphrase.Request) {
			s.mu.Lock()
			if s.gate == gate {
				s.emitLocked(PassphraseNeededEvent{Attempt: req.Attempt, LastFailed: req.LastFailed})
			}
			s.mu.Unlock()
		}),
	)
	s.gate = gate
	s.name = name
	s.ctx = ctx
	engines := s.engines
	s.mu.Unlock()

	go func() {
		_, span := s.tracer.StartSpan(ctx, "viewer.open")
		defer span.Finish()
		start := time.Now()

		doc, err := render.Open(ctx, data, gate.Ask, engines...)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			if doc != nil {
				doc.Close()
			}
			done <- ErrSessionClosed
			return
		}
		if s.gen != gen {
			if doc != nil {
				doc.Close()
			}
			done <- ErrOpenSuperseded
			return
		}
		if err != nil {
			gate.Close()
			span.SetError(err)
			s.log.Error("open failed",
				observability.String("name", name),
				observability.Error("error", err))
			s.emitLocked(OpenFailedEvent{Name: name, Err: err})
			done <- err
			return
		}

		gate.MarkOpen()
		s.doc = doc
		st := viewport.NewState(doc.PageCount())
		st.Selection.SetEnabled(true)
		s.state = st

		if rerr := s.renderLocked(); rerr != nil {
			doc.Close()
			s.doc, s.state, s.surface = nil, nil, nil
			span.SetError(rerr)
			s.emitLocked(OpenFailedEvent{Name: name, Err: rerr})
			done <- rerr
			return
		}

		span.SetTag(observability.MetricOpenTime, time.Since(start))
		span.SetTag(observability.MetricPageCount, doc.PageCount())
		s.log.Info("document opened",
			observability.String("name", name),
			observability.Int("pages", doc.PageCount()))
		s.emitLocked(DocumentOpenedEvent{Name: name, PageCount: doc.PageCount()})

		if herr := s.hub.Run(ctx, extensions.PhaseOpen, s.snapshotLocked()); herr != nil {
			s.log.Warn("open extensions", observability.Error("error", herr))
		}
		done <- nil
	}()
	return done
}

// Close discards the open document, releases a parked open and closes
// the event stream.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.resetLocked()
	s.closed = true
	close(s.events)
	return nil
}

// resetLocked discards per-document state and invalidates any open
// still in flight.
func (s *Session) resetLocked() {
	if s.gate != nil {
		s.gate.Close()
		s.gate = nil
	}
	if s.doc != nil {
		if err := s.doc.Close(); err != nil {
			s.log.Warn("close document", observability.Error("error", err))
		}
		s.doc = nil
	}
	s.state = nil
	s.surface = nil
	s.name = ""
	s.gen++
}

// SubmitPassphrase answers a pending passphrase request. Without one it
// returns passphrase.ErrNoPendingRequest.
func (s *Session) SubmitPassphrase(pass string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		return passphrase.ErrNoPendingRequest
	}
	return s.gate.Submit(pass)
}

// CancelPassphrase dismisses a pending passphrase request, which is
// terminal for that open attempt.
func (s *Session) CancelPassphrase() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		return passphrase.ErrNoPendingRequest
	}
	return s.gate.Cancel()
}

// PassphrasePending reports the outstanding request, if any.
func (s *Session) PassphrasePending() (passphrase.Request, bool) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate == nil {
		return passphrase.Request{}, false
	}
	return gate.Pending()
}

// Name returns the open document's display name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Page returns the current 1-based page, or 0 with no document.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0
	}
	return s.state.Page()
}

// PageCount returns the open document's page count, or 0.
func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0
	}
	return s.state.PageCount()
}

// Zoom returns the current zoom factor.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return viewport.ZoomDefault
	}
	return s.state.Zoom()
}

// Surface returns the current rendered page. Callers must not mutate
// the image.
func (s *Session) Surface() (*render.Surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return nil, false
	}
	return s.surface, true
}

// SetSurfaceOrigin records where the surface sits inside its container.
// Pointer coordinates are translated against this offset.
func (s *Session) SetSurfaceOrigin(left, top float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originLeft, s.originTop = left, top
	if s.surface != nil {
		s.surface.Geometry.DisplayLeft = left
		s.surface.Geometry.DisplayTop = top
	}
}

// Alert surfaces a message, typically on behalf of a script.
func (s *Session) Alert(message string) {
	s.log.Info("alert", observability.String("message", message))
	s.mu.Lock()
	s.emitLocked(AlertEvent{Message: message})
	s.mu.Unlock()
}

// renderLocked rasterizes the current page at the current zoom and
// replaces the surface. Callers hold s.mu.
func (s *Session) renderLocked() error {
	start := time.Now()
	surf, err := s.doc.RenderPage(s.ctx, s.state.Page(), s.state.Zoom())
	if err != nil {
		return err
	}
	surf.Geometry.DisplayLeft = s.originLeft
	surf.Geometry.DisplayTop = s.originTop
	s.surface = surf
	s.log.Debug("page rendered",
		observability.Int("page", s.state.Page()),
		observability.Float64("zoom", s.state.Zoom()),
		observability.Int64("duration_ms", time.Since(start).Milliseconds()))
	if herr := s.hub.Run(s.ctx, extensions.PhaseRender, s.snapshotLocked()); herr != nil {
		s.log.Warn("render extensions", observability.Error("error", herr))
	}
	return nil
}

// snapshotLocked builds the extension view of the session. Callers hold
// s.mu.
func (s *Session) snapshotLocked() *extensions.Snapshot {
	snap := &extensions.Snapshot{Name: s.name}
	if s.state != nil {
		snap.PageCount = s.state.PageCount()
		snap.Page = s.state.Page()
		snap.Zoom = s.state.Zoom()
	}
	if s.surface != nil {
		snap.Surface = s.surface.Image
		snap.Geometry = s.surface.Geometry
	}
	return snap
}

// emitLocked sends an event without blocking. Callers hold s.mu, which
// orders events and makes the closed check safe.
func (s *Session) emitLocked(e Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- e:
	default:
		s.log.Warn("event dropped", observability.String("type", e.Type().String()))
	}
}
