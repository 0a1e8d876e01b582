package memhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/editable/internal/condition"
	"github.com/AnatoleLucet/editable/internal/subscription"
)

func TestStore(t *testing.T) {
	t.Run("notifies attribute, object then entity interests", func(t *testing.T) {
		s := NewStore()
		rec := s.Create("Order", map[string]any{"IsLocked": false})
		log := []string{}

		s.Subscribe(subscription.Spec{Kind: subscription.KindEntity, Entity: "Order"}, func(ev subscription.Event) {
			log = append(log, "entity")
		})
		s.Subscribe(subscription.Spec{Kind: subscription.KindObject, ID: rec.ID()}, func(ev subscription.Event) {
			log = append(log, "object")
		})
		s.Subscribe(subscription.Spec{Kind: subscription.KindAttribute, ID: rec.ID(), Attribute: "IsLocked"}, func(ev subscription.Event) {
			log = append(log, "attribute")
			assert.Equal(t, true, ev.Value)
		})

		require.NoError(t, rec.Set("IsLocked", true))

		assert.Equal(t, []string{"attribute", "object", "entity"}, log)
		assert.Equal(t, 3, s.Notifications())
	})

	t.Run("filters by record, attribute and entity", func(t *testing.T) {
		s := NewStore()
		a := s.Create("Order", nil)
		b := s.Create("Invoice", nil)
		count := 0

		s.Subscribe(subscription.Spec{Kind: subscription.KindAttribute, ID: a.ID(), Attribute: "IsLocked"}, func(subscription.Event) { count++ })
		s.Subscribe(subscription.Spec{Kind: subscription.KindEntity, Entity: "Order"}, func(subscription.Event) { count++ })

		require.NoError(t, a.Set("Name", "x"))
		require.NoError(t, b.Set("IsLocked", true))

		assert.Equal(t, 1, count)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		s := NewStore()
		rec := s.Create("Order", nil)
		called := false

		h := s.Subscribe(subscription.Spec{Kind: subscription.KindObject, ID: rec.ID()}, func(subscription.Event) { called = true })
		assert.Equal(t, 1, s.LiveFor(rec.ID()))

		require.NoError(t, s.Unsubscribe(h))
		assert.ErrorIs(t, s.Unsubscribe(h), ErrUnknownHandle)

		require.NoError(t, rec.Set("Name", "x"))
		assert.False(t, called)
		assert.Equal(t, 0, s.Live())
	})

	t.Run("callbacks may unsubscribe", func(t *testing.T) {
		s := NewStore()
		rec := s.Create("Order", nil)

		var h subscription.Handle
		h = s.Subscribe(subscription.Spec{Kind: subscription.KindObject, ID: rec.ID()}, func(subscription.Event) {
			assert.NoError(t, s.Unsubscribe(h))
		})

		assert.NotPanics(t, func() { _ = rec.Set("Name", "x") })
		assert.Equal(t, 0, s.Live())
	})

	t.Run("delete", func(t *testing.T) {
		s := NewStore()
		rec := s.Create("Order", nil)
		var events []subscription.Event

		s.Subscribe(subscription.Spec{Kind: subscription.KindObject, ID: rec.ID()}, func(ev subscription.Event) {
			events = append(events, ev)
		})

		rec.Delete()
		rec.Delete()

		require.Len(t, events, 1)
		assert.True(t, events[0].Deleted)
		assert.ErrorIs(t, rec.Set("Name", "x"), ErrUnknownRecord)

		_, ok := s.Record(rec.ID())
		assert.False(t, ok)
	})

	t.Run("touch", func(t *testing.T) {
		s := NewStore()
		count := 0
		s.Subscribe(subscription.Spec{Kind: subscription.KindEntity, Entity: "Order"}, func(subscription.Event) { count++ })

		s.Touch("Order")
		s.Touch("Invoice")

		assert.Equal(t, 1, count)
	})
}

func TestChecks(t *testing.T) {
	draft := func(rec *Record) (bool, error) {
		v, _ := rec.Get("Status")
		return v == "draft", nil
	}

	t.Run("answers synchronously", func(t *testing.T) {
		s := NewStore()
		rec := s.Create("Order", map[string]any{"Status": "draft"})
		c := NewChecks(s).Register("CanEdit", draft)

		var got []bool
		c.Evaluate(condition.CheckRequest{Action: "CanEdit", ID: rec.ID()}, func(v bool, err error) {
			require.NoError(t, err)
			got = append(got, v)
		})

		assert.Equal(t, []bool{true}, got)
	})

	t.Run("deferred answers wait for flush", func(t *testing.T) {
		s := NewStore()
		a := s.Create("Order", map[string]any{"Status": "draft"})
		b := s.Create("Order", map[string]any{"Status": "sent"})
		c := NewChecks(s).Register("CanEdit", draft).Defer()

		log := []string{}
		c.Evaluate(condition.CheckRequest{Action: "CanEdit", ID: a.ID()}, func(v bool, _ error) { log = append(log, "a") })
		c.Evaluate(condition.CheckRequest{Action: "CanEdit", ID: b.ID()}, func(v bool, _ error) { log = append(log, "b") })
		assert.Empty(t, log)

		assert.Equal(t, 2, c.FlushReverse())
		assert.Equal(t, []string{"b", "a"}, log)
		assert.Equal(t, 0, c.Flush())
		assert.Len(t, c.Calls(), 2)
	})

	t.Run("unknown check and record", func(t *testing.T) {
		s := NewStore()
		rec := s.Create("Order", nil)
		c := NewChecks(s)

		c.Evaluate(condition.CheckRequest{Action: "Nope", ID: rec.ID()}, func(_ bool, err error) {
			assert.ErrorIs(t, err, ErrUnknownCheck)
		})
		c.Register("CanEdit", draft)
		c.Evaluate(condition.CheckRequest{Action: "CanEdit", ID: "missing"}, func(_ bool, err error) {
			assert.ErrorIs(t, err, ErrUnknownRecord)
		})
	})
}
