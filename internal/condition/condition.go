// Package condition resolves the boolean that drives editability, either
// from an attribute of the bound record or from an asynchronous check.
package condition

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Source identifies where the condition comes from.
type Source int

const (
	// SourceError marks a misconfigured widget: neither or both sources were set.
	SourceError Source = iota
	SourceAttribute
	SourceCheck
)

func (s Source) String() string {
	switch s {
	case SourceAttribute:
		return "attribute"
	case SourceCheck:
		return "check"
	default:
		return "error"
	}
}

// SourceOf picks the source from the configured attribute and check names.
// Exactly one of them must be non-blank.
func SourceOf(attribute, check string) Source {
	attribute, check = strings.TrimSpace(attribute), strings.TrimSpace(check)
	switch {
	case attribute != "" && check == "":
		return SourceAttribute
	case check != "" && attribute == "":
		return SourceCheck
	default:
		return SourceError
	}
}

var (
	ErrMisconfigured = errors.New("condition: exactly one of attribute or check must be configured")
	ErrStale         = errors.New("condition: check response superseded by a newer request")
)

// Status is the state of a Resolution.
type Status int

const (
	StatusPending Status = iota
	StatusResolved
	StatusError
)

// Resolution is the outcome of one resolve. Seq increases with every
// resolved value, so two resolutions to the same boolean are still distinct.
type Resolution struct {
	Status   Status
	Editable bool
	Seq      uint64
}

// Resolved reports whether r carries a concrete boolean.
func (r Resolution) Resolved() bool { return r.Status == StatusResolved }

// Record is the bound data object.
type Record interface {
	ID() string
	Get(attribute string) (any, bool)
}

// CheckRequest asks the host to run a named check against one record.
type CheckRequest struct {
	Action string
	ID     string
}

// Evaluator runs checks. done must be called exactly once, on the widget's
// event sequence.
type Evaluator interface {
	Evaluate(req CheckRequest, done func(result bool, err error))
}

// Options configure a Resolver.
type Options struct {
	Attribute string
	Check     string
	Invert    bool
	Evaluator Evaluator
}

// Resolver turns a record into a Resolution.
type Resolver struct {
	mu sync.Mutex

	source    Source
	attribute string
	check     string
	invert    bool
	evaluator Evaluator

	seq uint64
	gen uint64
}

// NewResolver builds a resolver; the source is derived from opts.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		source:    SourceOf(opts.Attribute, opts.Check),
		attribute: strings.TrimSpace(opts.Attribute),
		check:     strings.TrimSpace(opts.Check),
		invert:    opts.Invert,
		evaluator: opts.Evaluator,
	}
}

// Source reports the configured source.
func (r *Resolver) Source() Source { return r.source }

// Attribute reports the attribute driving the condition, if any.
func (r *Resolver) Attribute() string { return r.attribute }

// Resolve returns the immediate outcome for rec.
//
// In Attribute mode the value is read synchronously. In Check mode the
// returned Resolution is pending and done receives the answer later; an
// answer overtaken by a newer Resolve call is reported as ErrStale instead.
// A nil rec leaves the resolution pending.
func (r *Resolver) Resolve(rec Record, done func(Resolution, error)) (Resolution, error) {
	switch r.source {
	case SourceAttribute:
		if rec == nil {
			return Resolution{Status: StatusPending}, nil
		}
		v, ok := rec.Get(r.attribute)
		if !ok {
			return Resolution{Status: StatusPending}, fmt.Errorf("condition: attribute %q not found on %s", r.attribute, rec.ID())
		}
		return r.FromValue(v)

	case SourceCheck:
		if rec == nil {
			return Resolution{Status: StatusPending}, nil
		}
		if r.evaluator == nil {
			return Resolution{Status: StatusError}, fmt.Errorf("condition: no evaluator for check %q", r.check)
		}
		gen := r.nextGeneration()
		r.evaluator.Evaluate(CheckRequest{Action: r.check, ID: rec.ID()}, func(result bool, err error) {
			if done == nil {
				return
			}
			if !r.current(gen) {
				done(Resolution{Status: StatusPending}, ErrStale)
				return
			}
			if err != nil {
				done(Resolution{Status: StatusError}, err)
				return
			}
			done(r.resolved(result), nil)
		})
		return Resolution{Status: StatusPending}, nil

	default:
		return Resolution{Status: StatusError}, ErrMisconfigured
	}
}

// FromValue resolves a value supplied directly, e.g. by an attribute change
// notification. Non-boolean values leave the resolution pending.
func (r *Resolver) FromValue(v any) (Resolution, error) {
	if r.source == SourceError {
		return Resolution{Status: StatusError}, ErrMisconfigured
	}
	b, ok := v.(bool)
	if !ok {
		return Resolution{Status: StatusPending}, fmt.Errorf("condition: attribute %q holds %T, want bool", r.attribute, v)
	}
	return r.resolved(b), nil
}

// Supersede invalidates any check still in flight.
func (r *Resolver) Supersede() {
	r.nextGeneration()
}

func (r *Resolver) resolved(v bool) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	return Resolution{Status: StatusResolved, Editable: v != r.invert, Seq: r.seq}
}

func (r *Resolver) nextGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	return r.gen
}

func (r *Resolver) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen == r.gen
}
