// Package memhost is an in-memory page host: a record store with change
// subscriptions, a check evaluator and a control tree. It backs the demo
// command and the tests.
package memhost

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/AnatoleLucet/editable/internal/subscription"
)

var (
	ErrUnknownHandle = errors.New("memhost: unknown subscription handle")
	ErrUnknownRecord = errors.New("memhost: unknown record")
	ErrUnknownCheck  = errors.New("memhost: unknown check")
)

type subscriber struct {
	spec subscription.Spec
	fn   func(subscription.Event)
}

// Store holds records and the subscriptions registered against them.
type Store struct {
	mu sync.Mutex

	records map[string]*Record
	subs    map[subscription.Handle]subscriber
	order   []subscription.Handle

	notifications int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*Record),
		subs:    make(map[subscription.Handle]subscriber),
	}
}

// Create adds a record of entity with a copy of attrs.
func (s *Store) Create(entity string, attrs map[string]any) *Record {
	r := &Record{
		store:  s,
		id:     uuid.NewString(),
		entity: entity,
		attrs:  make(map[string]any, len(attrs)),
	}
	for k, v := range attrs {
		r.attrs[k] = v
	}

	s.mu.Lock()
	s.records[r.id] = r
	s.mu.Unlock()

	return r
}

// Record looks a record up by id.
func (s *Store) Record(id string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	return r, ok
}

// Subscribe registers fn for changes matching spec.
func (s *Store) Subscribe(spec subscription.Spec, fn func(subscription.Event)) subscription.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := subscription.Handle(uuid.NewString())
	s.subs[h] = subscriber{spec: spec, fn: fn}
	s.order = append(s.order, h)
	return h
}

// Unsubscribe releases h. Releasing an unknown handle reports ErrUnknownHandle.
func (s *Store) Unsubscribe(h subscription.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[h]; !ok {
		return ErrUnknownHandle
	}
	delete(s.subs, h)
	for i, other := range s.order {
		if other == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Live reports how many subscriptions are registered.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// LiveFor reports how many subscriptions target record id.
func (s *Store) LiveFor(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sub := range s.subs {
		if sub.spec.ID == id {
			n++
		}
	}
	return n
}

// Notifications reports how many callbacks the store has invoked.
func (s *Store) Notifications() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifications
}

// Touch notifies every entity-level subscriber of entity without changing data.
func (s *Store) Touch(entity string) {
	s.notify(func(spec subscription.Spec) (subscription.Event, bool) {
		if spec.Kind != subscription.KindEntity || spec.Entity != entity {
			return subscription.Event{}, false
		}
		return subscription.Event{Kind: subscription.KindEntity, Entity: entity}, true
	})
}

// notify calls every subscriber match accepts, outside the lock, in
// attribute, object, entity order.
func (s *Store) notify(match func(subscription.Spec) (subscription.Event, bool)) {
	type call struct {
		fn func(subscription.Event)
		ev subscription.Event
	}

	s.mu.Lock()
	var calls []call
	for _, kind := range []subscription.Kind{subscription.KindAttribute, subscription.KindObject, subscription.KindEntity} {
		for _, h := range s.order {
			sub := s.subs[h]
			if sub.spec.Kind != kind {
				continue
			}
			if ev, ok := match(sub.spec); ok {
				calls = append(calls, call{fn: sub.fn, ev: ev})
			}
		}
	}
	s.notifications += len(calls)
	s.mu.Unlock()

	for _, c := range calls {
		c.fn(c.ev)
	}
}

// Record is one stored object.
type Record struct {
	store *Store

	id      string
	entity  string
	attrs   map[string]any
	deleted bool
}

func (r *Record) ID() string     { return r.id }
func (r *Record) Entity() string { return r.entity }

// Get reads an attribute.
func (r *Record) Get(attribute string) (any, bool) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	v, ok := r.attrs[attribute]
	return v, ok
}

// Set writes an attribute and notifies subscribers of the record, the
// attribute and the entity.
func (r *Record) Set(attribute string, value any) error {
	r.store.mu.Lock()
	if r.deleted {
		r.store.mu.Unlock()
		return ErrUnknownRecord
	}
	r.attrs[attribute] = value
	r.store.mu.Unlock()

	r.store.notify(func(spec subscription.Spec) (subscription.Event, bool) {
		switch spec.Kind {
		case subscription.KindAttribute:
			if spec.ID != r.id || spec.Attribute != attribute {
				return subscription.Event{}, false
			}
			return subscription.Event{Kind: spec.Kind, ID: r.id, Entity: r.entity, Attribute: attribute, Value: value}, true
		case subscription.KindObject:
			if spec.ID != r.id {
				return subscription.Event{}, false
			}
			return subscription.Event{Kind: spec.Kind, ID: r.id, Entity: r.entity}, true
		default:
			if spec.Entity != r.entity {
				return subscription.Event{}, false
			}
			return subscription.Event{Kind: spec.Kind, ID: r.id, Entity: r.entity}, true
		}
	})
	return nil
}

// Delete removes the record and notifies object and entity subscribers.
func (r *Record) Delete() {
	r.store.mu.Lock()
	if r.deleted {
		r.store.mu.Unlock()
		return
	}
	r.deleted = true
	delete(r.store.records, r.id)
	r.store.mu.Unlock()

	r.store.notify(func(spec subscription.Spec) (subscription.Event, bool) {
		switch {
		case spec.Kind == subscription.KindObject && spec.ID == r.id:
		case spec.Kind == subscription.KindEntity && spec.Entity == r.entity:
		default:
			return subscription.Event{}, false
		}
		return subscription.Event{Kind: spec.Kind, ID: r.id, Entity: r.entity, Deleted: true}, true
	})
}
