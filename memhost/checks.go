package memhost

import (
	"fmt"
	"sync"

	"github.com/AnatoleLucet/editable/internal/condition"
)

// Rule computes a check result for one record.
type Rule func(rec *Record) (bool, error)

// Checks evaluates named rules against store records. In deferred mode
// answers are held until Flush, the way a server round trip would be.
type Checks struct {
	mu sync.Mutex

	store    *Store
	rules    map[string]Rule
	deferred bool
	queue    []func()
	calls    []condition.CheckRequest
}

// NewChecks creates an evaluator over store.
func NewChecks(store *Store) *Checks {
	return &Checks{store: store, rules: make(map[string]Rule)}
}

// Register adds or replaces the rule for action.
func (c *Checks) Register(action string, rule Rule) *Checks {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules[action] = rule
	return c
}

// Defer holds answers until Flush or FlushReverse is called.
func (c *Checks) Defer() *Checks {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deferred = true
	return c
}

// Evaluate implements condition.Evaluator.
func (c *Checks) Evaluate(req condition.CheckRequest, done func(bool, error)) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	rule, ok := c.rules[req.Action]
	deferred := c.deferred
	c.mu.Unlock()

	answer := func() {
		if !ok {
			done(false, fmt.Errorf("%w: %s", ErrUnknownCheck, req.Action))
			return
		}
		rec, found := c.store.Record(req.ID)
		if !found {
			done(false, fmt.Errorf("%w: %s", ErrUnknownRecord, req.ID))
			return
		}
		done(rule(rec))
	}

	if !deferred {
		answer()
		return
	}

	c.mu.Lock()
	c.queue = append(c.queue, answer)
	c.mu.Unlock()
}

// Flush delivers held answers in request order.
func (c *Checks) Flush() int {
	queue := c.take()
	for _, answer := range queue {
		answer()
	}
	return len(queue)
}

// FlushReverse delivers held answers newest first.
func (c *Checks) FlushReverse() int {
	queue := c.take()
	for i := len(queue) - 1; i >= 0; i-- {
		queue[i]()
	}
	return len(queue)
}

// Calls lists every request received.
func (c *Checks) Calls() []condition.CheckRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]condition.CheckRequest(nil), c.calls...)
}

func (c *Checks) take() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.queue
	c.queue = nil
	return queue
}
