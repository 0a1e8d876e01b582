// Package subscription keeps the widget's change subscriptions pointed at
// the currently bound record.
package subscription

import (
	"strings"
	"sync"

	"github.com/AnatoleLucet/editable/internal/logging"
)

// Kind selects what a subscription listens to.
type Kind int

const (
	// KindObject fires on any change or deletion of one record.
	KindObject Kind = iota
	// KindAttribute fires when one attribute of one record changes.
	KindAttribute
	// KindEntity fires on any change to records of a class.
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindAttribute:
		return "attribute"
	case KindEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Spec describes one registered interest.
type Spec struct {
	Kind      Kind
	ID        string
	Attribute string
	Entity    string
}

// Event is delivered to subscription callbacks. Value is only meaningful for
// KindAttribute events.
type Event struct {
	Kind      Kind
	ID        string
	Entity    string
	Attribute string
	Value     any
	Deleted   bool
}

// Handle is the host's opaque token for a registered interest.
type Handle string

// Host is the data-binding host's subscription surface.
type Host interface {
	Subscribe(spec Spec, fn func(Event)) Handle
	// Unsubscribe may be called with handles that are already released.
	Unsubscribe(h Handle) error
}

// Record is the bound data object as seen by the manager.
type Record interface {
	ID() string
	Entity() string
}

// Options configure a Manager.
type Options struct {
	// Attribute is the condition attribute to watch on the bound record.
	Attribute string
	// Entity is the class watched regardless of the bound record.
	Entity string
	Logger logging.Logger
}

// Manager owns the widget's subscription handles.
type Manager struct {
	mu sync.Mutex

	host      Host
	attribute string
	entity    string
	log       logging.Logger
	onChange  func(Event)

	handles []Handle
	// epoch invalidates callbacks of handles released by Rebind or Teardown
	epoch uint64
}

// New creates a manager that forwards every observed change to onChange.
func New(host Host, opts Options, onChange func(Event)) *Manager {
	log := opts.Logger
	if log == nil {
		log = logging.NoOp()
	}
	return &Manager{
		host:      host,
		attribute: strings.TrimSpace(opts.Attribute),
		entity:    strings.TrimSpace(opts.Entity),
		log:       log,
		onChange:  onChange,
	}
}

// Rebind releases every held handle and subscribes to rec. With a nil rec
// only the entity-level interest is registered.
func (m *Manager) Rebind(rec Record) {
	epoch := m.release()
	if m.host == nil {
		return
	}

	specs := m.specs(rec)
	handles := make([]Handle, 0, len(specs))
	for _, spec := range specs {
		handles = append(handles, m.host.Subscribe(spec, m.callback(epoch, spec)))
	}

	m.mu.Lock()
	stale := m.epoch != epoch
	if !stale {
		m.handles = append(m.handles, handles...)
	}
	m.mu.Unlock()

	// a Teardown raced with this Rebind; drop what was just registered
	if stale {
		m.unsubscribe(handles)
		return
	}

	m.log.Debug("editable.subscription.rebind", "handles", len(handles), "record", recordID(rec))
}

// Teardown releases every handle. It is safe to call repeatedly.
func (m *Manager) Teardown() {
	m.release()
}

// Len reports how many handles are currently held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

func (m *Manager) specs(rec Record) []Spec {
	specs := make([]Spec, 0, 3)
	if rec != nil {
		specs = append(specs, Spec{Kind: KindObject, ID: rec.ID(), Entity: rec.Entity()})
		if m.attribute != "" {
			specs = append(specs, Spec{Kind: KindAttribute, ID: rec.ID(), Entity: rec.Entity(), Attribute: m.attribute})
		}
	}
	if m.entity != "" {
		specs = append(specs, Spec{Kind: KindEntity, Entity: m.entity})
	}
	return specs
}

func (m *Manager) callback(epoch uint64, spec Spec) func(Event) {
	return func(ev Event) {
		m.mu.Lock()
		live := m.epoch == epoch
		m.mu.Unlock()
		if !live {
			return
		}

		m.log.Debug("editable.subscription.change", "kind", spec.Kind.String(), "id", ev.ID, "entity", ev.Entity)
		if m.onChange != nil {
			m.onChange(ev)
		}
	}
}

func (m *Manager) release() uint64 {
	m.mu.Lock()
	handles := m.handles
	m.handles = nil
	m.epoch++
	epoch := m.epoch
	m.mu.Unlock()

	m.unsubscribe(handles)
	return epoch
}

func (m *Manager) unsubscribe(handles []Handle) {
	if m.host == nil {
		return
	}
	for _, h := range handles {
		if err := m.host.Unsubscribe(h); err != nil {
			m.log.Debug("editable.subscription.release_failed", "handle", string(h), "error", err)
		}
	}
}

func recordID(rec Record) string {
	if rec == nil {
		return ""
	}
	return rec.ID()
}
