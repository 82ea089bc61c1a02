package recovery

import (
	"context"
	"fmt"

	"github.com/RAZZKCODE/pdf-edit-print/observability"
)

// StrictStrategy fails the whole open on the first damaged page.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx context.Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy keeps going: damaged pages are skipped, and every error
// is logged and retained for inspection.
type LenientStrategy struct {
	log    observability.Logger
	Errors []error
}

func NewLenientStrategy(log observability.Logger) *LenientStrategy {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &LenientStrategy{log: log}
}

func (s *LenientStrategy) OnError(ctx context.Context, err error, location Location) Action {
	s.Errors = append(s.Errors, fmt.Errorf("%s page %d %s: %w", location.Component, location.Page, location.Member, err))
	s.log.Warn("skipping damaged page",
		observability.String("component", location.Component),
		observability.Int("page", location.Page),
		observability.String("member", location.Member),
		observability.Error("err", err))
	return ActionSkip
}
