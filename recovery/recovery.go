// Package recovery decides how the viewer reacts to damaged documents:
// fail the open, skip the broken page, or carry on with a warning.
package recovery

import "context"

// Strategy is consulted when an engine hits a decodable-but-damaged spot,
// such as an album member that will not decode.
type Strategy interface {
	OnError(ctx context.Context, err error, location Location) Action
}

// Location identifies where in the document the error occurred.
type Location struct {
	Page      int
	Member    string
	Component string
}

// Action is the strategy's verdict.
type Action int

const (
	ActionFail Action = iota
	ActionSkip
	ActionWarn
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	case ActionWarn:
		return "warn"
	}
	return "unknown"
}
