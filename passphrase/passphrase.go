// Package passphrase coordinates a document open that pauses for
// credentials with the user-facing prompt that supplies them. The gate
// holds at most one outstanding request; resolving it twice, or after the
// gate has moved on to another document, is a harmless no-op.
package passphrase

import (
	"errors"
	"sync"

	"github.com/RAZZKCODE/pdf-edit-print/observability"
)

// Reason tells the prompt why credentials are being requested.
type Reason int

const (
	FirstRequest Reason = iota
	PriorAttemptRejected
)

func (r Reason) String() string {
	if r == PriorAttemptRejected {
		return "prior attempt rejected"
	}
	return "first request"
}

// State of the gate.
type State int

const (
	Closed State = iota
	AwaitingInput
	Verifying
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case AwaitingInput:
		return "awaiting input"
	case Verifying:
		return "verifying"
	case Open:
		return "open"
	}
	return "unknown"
}

// Request describes the outstanding prompt.
type Request struct {
	Attempt    int
	LastFailed bool
}

// AskFunc is the callback a rendering engine invokes when it needs a
// passphrase. It blocks until the user answers; ok is false when the user
// cancelled, which ends the open attempt.
type AskFunc func(reason Reason) (pass string, ok bool)

// ErrNoPendingRequest is returned by Submit and Cancel when no request is
// awaiting input, which includes resolving the same request twice.
var ErrNoPendingRequest = errors.New("no pending passphrase request")

type answer struct {
	pass      string
	cancelled bool
}

// Gate is the rendezvous between the opening goroutine and the UI. One
// gate serves one document-open sequence; opening another document means
// closing this gate and creating a fresh one, which is what makes stale
// resolutions no-ops.
type Gate struct {
	mu     sync.Mutex
	state  State
	req    Request
	slot   chan answer
	prompt func(Request)
	log    observability.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(l observability.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// WithPrompt registers the function invoked when a request becomes
// pending. It runs on the opening goroutine after the gate state is
// updated, so Submit and Cancel are valid by the time it fires.
func WithPrompt(fn func(Request)) Option {
	return func(g *Gate) { g.prompt = fn }
}

// NewGate returns a closed gate.
func NewGate(opts ...Option) *Gate {
	g := &Gate{state: Closed, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the gate's current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns the outstanding request while the gate awaits input.
func (g *Gate) Pending() (Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != AwaitingInput {
		return Request{}, false
	}
	return g.req, true
}

// Ask implements AskFunc. It registers the request, surfaces the prompt
// and parks the caller until Submit or Cancel resolves it. There is no
// timeout; the request waits indefinitely for the user.
func (g *Gate) Ask(reason Reason) (string, bool) {
	g.mu.Lock()
	if g.state == Open || g.state == AwaitingInput {
		// Either the document already opened, or a request is
		// outstanding. A second concurrent ask gets no credentials.
		g.mu.Unlock()
		return "", false
	}
	g.req = Request{Attempt: g.req.Attempt + 1, LastFailed: reason == PriorAttemptRejected}
	g.state = AwaitingInput
	slot := make(chan answer, 1)
	g.slot = slot
	req := g.req
	prompt := g.prompt
	g.mu.Unlock()

	g.log.Debug("passphrase requested",
		observability.Int("attempt", req.Attempt),
		observability.String("reason", reason.String()))
	if prompt != nil {
		prompt(req)
	}

	ans := <-slot

	if ans.cancelled {
		g.mu.Lock()
		if g.state != Open {
			g.state = Closed
		}
		g.mu.Unlock()
		return "", false
	}
	return ans.pass, true
}

// Submit hands the passphrase to the waiting open and moves the gate to
// Verifying. Without a pending request this is a no-op returning
// ErrNoPendingRequest.
func (g *Gate) Submit(pass string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != AwaitingInput || g.slot == nil {
		return ErrNoPendingRequest
	}
	g.state = Verifying
	slot := g.slot
	g.slot = nil
	slot <- answer{pass: pass}
	return nil
}

// Cancel resolves the pending request with a cancellation. The gate
// closes and the document stays unopened; this is terminal for the open
// attempt.
func (g *Gate) Cancel() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != AwaitingInput || g.slot == nil {
		return ErrNoPendingRequest
	}
	g.state = Closed
	slot := g.slot
	g.slot = nil
	slot <- answer{cancelled: true}
	return nil
}

// MarkOpen records that the engine accepted the credentials (or needed
// none) and the document is open. The pending request, if any, is gone.
func (g *Gate) MarkOpen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Open
	g.req = Request{}
	g.slot = nil
}

// Close releases a blocked open with a cancellation and retires the gate.
// Every Submit or Cancel after this is a no-op, which is what protects a
// rapid document swap from stale prompt callbacks.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.slot != nil {
		g.slot <- answer{cancelled: true}
		g.slot = nil
	}
	g.state = Closed
}
