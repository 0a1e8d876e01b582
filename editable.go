// Package editable toggles the editability of a group of form controls from
// a single boolean condition.
//
// The condition comes either from a boolean attribute of the bound record or
// from a named check evaluated by the host. A Widget keeps that condition
// current through change subscriptions and propagates it to every control
// of its enclosing container: fields are disabled, content areas made
// read-only, buttons carrying the configured class disabled or hidden, rich
// text editors and slider toggles updated after a delay.
//
// The widget is cosmetic. It does not enforce access control.
//
// A Widget must be driven from a single event sequence (the page's event
// loop). Delayed updates fire through the configured Clock.
package editable

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/AnatoleLucet/editable/internal/condition"
	"github.com/AnatoleLucet/editable/internal/logging"
	"github.com/AnatoleLucet/editable/internal/propagate"
	"github.com/AnatoleLucet/editable/internal/reactive"
	"github.com/AnatoleLucet/editable/internal/schedule"
	"github.com/AnatoleLucet/editable/internal/subscription"
)

type phase int

const (
	phaseNew phase = iota
	phaseMounted
	phaseDisposed
)

// binding is one bound context. A fresh pointer per Update makes every
// update re-run the binding effect, even for the same record.
type binding struct {
	ctx DataContext
}

// Stats are diagnostics about propagation passes.
type Stats struct {
	Passes      int
	LastMatched int
	Subscribed  int
}

// Widget is one editability controller attached to a page.
type Widget struct {
	id     string
	cfg    Config
	cfgErr error
	host   Host
	log    Logger
	clock  Clock

	phase    phase
	current  DataContext
	checkErr error

	owner    *reactive.Owner
	bound    *reactive.Signal[*binding]
	state    *reactive.Signal[condition.Resolution]
	resolver *condition.Resolver
	subs     *subscription.Manager
	prop     *propagate.Propagator

	stats Stats
}

// New builds a widget. An invalid configuration does not fail construction:
// the widget is created in a failed state, logs the problem on Mount and
// never touches the page.
func New(cfg Config, host Host, opts ...Option) *Widget {
	w := &Widget{
		id:    uuid.NewString(),
		cfg:   cfg.withDefaults(),
		host:  host,
		clock: schedule.Real(),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.cfgErr = w.cfg.Validate()
	if w.log == nil {
		w.log = newLogger(w.cfg)
	}
	w.log = w.log.WithFields(map[string]any{"widget": w.id})

	w.resolver = condition.NewResolver(condition.Options{
		Attribute: w.cfg.ConditionAttribute,
		Check:     w.cfg.ConditionCheck,
		Invert:    w.cfg.InvertResult,
		Evaluator: host.Checks,
	})
	w.subs = subscription.New(host.Data, subscription.Options{
		Attribute: w.resolver.Attribute(),
		Entity:    w.cfg.SubscribeEntity,
		Logger:    w.log,
	}, w.onChange)
	w.prop = propagate.New(propagate.Options{
		ExcludeBinding: w.cfg.ConditionAttribute,
		ButtonClass:    w.cfg.ButtonClass,
		HideButtons:    w.cfg.HideInsteadOfDisable,
		EditorDelay:    w.cfg.EditorDelay,
		SliderDelay:    w.cfg.SliderDelay,
		Clock:          w.clock,
		Logger:         w.log,
	})

	w.bound = reactive.NewSignal(&binding{})
	w.state = reactive.NewSignal(condition.Resolution{})

	w.owner = reactive.NewOwner()
	w.owner.OnError(func(r any) {
		w.log.Error("editable.effect.panic", "recover", r)
	})

	return w
}

func newLogger(cfg Config) Logger {
	if !cfg.EnableLogging {
		return logging.NoOp()
	}
	provider, err := logging.NewProvider(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return logging.NoOp()
	}
	return provider.GetLogger("editable")
}

// ID is the widget's instance id.
func (w *Widget) ID() string { return w.id }

// Config returns the widget's configuration after defaults.
func (w *Widget) Config() Config { return w.cfg }

// ConfigError reports why the configuration was rejected, if it was.
func (w *Widget) ConfigError() error { return w.cfgErr }

// CheckError reports the last check evaluation failure.
func (w *Widget) CheckError() error { return w.checkErr }

// Source reports where the condition comes from: attribute, check or error.
func (w *Widget) Source() string {
	if w.cfgErr != nil {
		return condition.SourceError.String()
	}
	return w.resolver.Source().String()
}

// Stats returns propagation diagnostics.
func (w *Widget) Stats() Stats {
	s := w.stats
	s.Subscribed = w.subs.Len()
	return s
}

// Mount starts the widget with no bound context. Only the entity-level
// subscription is active until Update supplies a record.
func (w *Widget) Mount() {
	if w.phase != phaseNew {
		return
	}
	w.phase = phaseMounted

	if w.cfgErr != nil {
		w.log.Error("editable.config.invalid", "error", w.cfgErr)
		return
	}
	w.log.Debug("editable.resolve.source", "source", w.resolver.Source().String())

	w.owner.OnCleanup(w.subs.Teardown)
	w.owner.OnCleanup(func() {
		w.resolver.Supersede()
		if n := w.prop.Cancel(); n > 0 {
			w.log.Debug("editable.dispose.cancelled", "tasks", n)
		}
	})

	_ = w.owner.Run(func() error {
		reactive.NewEffect(w.bind)
		reactive.NewEffect(w.propagate)
		return nil
	})
}

// Update binds ctx, resubscribes and re-resolves. A nil ctx keeps the
// previously bound record. Update mounts the widget if needed and is ignored
// once disposed.
func (w *Widget) Update(ctx DataContext) {
	switch w.phase {
	case phaseDisposed:
		return
	case phaseNew:
		w.Mount()
	}
	if w.cfgErr != nil {
		return
	}

	if ctx == nil {
		ctx = w.current
	}
	w.current = ctx
	w.bound.Write(&binding{ctx: ctx})
}

// Dispose releases subscriptions and cancels delayed updates. It is safe
// to call more than once.
func (w *Widget) Dispose() {
	if w.phase == phaseDisposed {
		return
	}
	w.phase = phaseDisposed
	w.owner.Dispose()
	w.log.Debug("editable.dispose")
}

func (w *Widget) bind() {
	b := w.bound.Read()

	reactive.Untrack(func() struct{} {
		w.subs.Rebind(b.ctx)
		w.resolve(b.ctx)
		return struct{}{}
	})
}

func (w *Widget) propagate() {
	res := w.state.Read()
	if !res.Resolved() {
		return
	}

	matched := w.prop.Apply(w.host.Anchor, res.Editable)
	w.stats.Passes++
	w.stats.LastMatched = matched
	w.log.Info("editable.apply.done", "editable", res.Editable, "matched", matched)
}

func (w *Widget) onChange(ev subscription.Event) {
	if w.phase != phaseMounted {
		return
	}

	if ev.Kind == subscription.KindAttribute {
		res, err := w.resolver.FromValue(ev.Value)
		if err != nil {
			w.log.Warn("editable.resolve.failed", "error", err)
			return
		}
		w.commit(res)
		return
	}

	w.resolve(w.current)
}

func (w *Widget) resolve(ctx DataContext) {
	var rec condition.Record
	if ctx != nil {
		rec = ctx
	}

	res, err := w.resolver.Resolve(rec, w.deliver)
	if err != nil {
		w.log.Warn("editable.resolve.failed", "error", err)
		return
	}
	w.commit(res)
}

func (w *Widget) deliver(res condition.Resolution, err error) {
	if w.phase != phaseMounted {
		return
	}

	switch {
	case errors.Is(err, condition.ErrStale):
		w.log.Debug("editable.check.stale", "check", w.cfg.ConditionCheck)
	case err != nil:
		w.checkErr = goerrors.Wrap(err, goerrors.CategoryCommand, "editable condition check failed").
			WithTextCode(codeCheckFailed)
		w.log.Error("editable.check.failed", "check", w.cfg.ConditionCheck, "error", w.checkErr)
	default:
		w.checkErr = nil
		w.commit(res)
	}
}

func (w *Widget) commit(res condition.Resolution) {
	if !res.Resolved() {
		return
	}
	w.log.Debug("editable.resolve.value", "editable", res.Editable)
	w.state.Write(res)
}
