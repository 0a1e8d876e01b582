package editable

import (
	"github.com/AnatoleLucet/editable/internal/condition"
	"github.com/AnatoleLucet/editable/internal/control"
	"github.com/AnatoleLucet/editable/internal/logging"
	"github.com/AnatoleLucet/editable/internal/schedule"
	"github.com/AnatoleLucet/editable/internal/subscription"
)

// DataContext is the record bound to the widget by the hosting page. The
// widget never creates or destroys it.
type DataContext interface {
	ID() string
	Entity() string
	Get(attribute string) (any, bool)
}

type (
	// DataHost registers and releases change subscriptions.
	DataHost         = subscription.Host
	SubscriptionSpec = subscription.Spec
	ChangeEvent      = subscription.Event
	Handle           = subscription.Handle

	// Evaluator runs named checks against a record.
	Evaluator    = condition.Evaluator
	CheckRequest = condition.CheckRequest

	Control       = control.Control
	Container     = control.Container
	Anchor        = control.Anchor
	Field         = control.Field
	ContentBearer = control.ContentBearer
	Button        = control.Button
	Editor        = control.Editor
	EditorHost    = control.EditorHost
	Slider        = control.Slider

	Clock  = schedule.Clock
	Timer  = schedule.Timer
	Logger = logging.Logger
)

// Host bundles the page collaborators the widget talks to.
type Host struct {
	// Data supplies change subscriptions. Nil disables re-resolving on change.
	Data DataHost
	// Checks runs ConditionCheck. Required when the condition is a check.
	Checks Evaluator
	// Anchor is the widget's own node, used to find the enclosing container.
	Anchor Anchor
}

// Option customises a Widget.
type Option func(*Widget)

// WithLogger replaces the logger built from Config.
func WithLogger(l Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.log = l
		}
	}
}

// WithClock sets the clock driving the editor and slider delays.
func WithClock(c Clock) Option {
	return func(w *Widget) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithID overrides the generated instance id.
func WithID(id string) Option {
	return func(w *Widget) {
		if id != "" {
			w.id = id
		}
	}
}
