package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribersInOrderNTimes(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		b.Subscribe("state.res1", func(topic string, msg Message) error {
			order = append(order, i)
			return nil
		})
	}

	for n := 0; n < 5; n++ {
		b.Publish("state.res1", Message{"volume": 1.0})
	}

	require.Len(t, order, 15)
	for n := 0; n < 5; n++ {
		assert.Equal(t, []int{0, 1, 2}, order[n*3:n*3+3])
	}
}

func TestPublishUnknownTopicIsNoOp(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Publish("state.nothing", Message{"x": 1})
	})
}

func TestSubscriberErrorDoesNotHaltDelivery(t *testing.T) {
	b := New()
	var called []string

	b.Subscribe("t", func(topic string, msg Message) error {
		called = append(called, "a")
		return errors.New("boom")
	})
	b.Subscribe("t", func(topic string, msg Message) error {
		called = append(called, "b")
		return nil
	})

	b.Publish("t", Message{})
	assert.Equal(t, []string{"a", "b"}, called)
}

func TestSubscribeDuringDeliveryAffectsOnlyFuturePublishes(t *testing.T) {
	b := New()
	var lateCalled bool

	b.Subscribe("t", func(topic string, msg Message) error {
		b.Subscribe("t", func(topic string, msg Message) error {
			lateCalled = true
			return nil
		})
		return nil
	})

	b.Publish("t", Message{})
	assert.False(t, lateCalled, "registration during delivery must not affect the in-flight publish")

	b.Publish("t", Message{})
	assert.True(t, lateCalled, "registration during delivery must affect the next publish")
}

func TestReentrantPublishCompletesNestedDeliveryFirst(t *testing.T) {
	b := New()
	var sequence []string

	b.Subscribe("outer", func(topic string, msg Message) error {
		sequence = append(sequence, "outer-start")
		b.Publish("inner", Message{})
		sequence = append(sequence, "outer-end")
		return nil
	})
	b.Subscribe("inner", func(topic string, msg Message) error {
		sequence = append(sequence, "inner")
		return nil
	})

	b.Publish("outer", Message{})
	assert.Equal(t, []string{"outer-start", "inner", "outer-end"}, sequence)
}

func TestStatsTracksPublishesAndDeliveries(t *testing.T) {
	b := New()
	b.Subscribe("t", func(topic string, msg Message) error { return nil })
	b.Subscribe("t", func(topic string, msg Message) error { return nil })

	b.Publish("t", Message{})
	b.Publish("unsubscribed-topic", Message{})

	stats := b.Stats()
	assert.EqualValues(t, 2, stats.TotalPublishes)
	assert.EqualValues(t, 2, stats.TotalDeliveries)
}
