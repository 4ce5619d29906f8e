// Package bus implements the synchronous, topic-keyed publish/subscribe
// fabric that decouples agents from physical components.
package bus

import (
	"fmt"
	"sync"

	"hydromas/internal/log"
)

// Message is an untyped property map: field name to scalar/array/string
// value. Agents agree on field names by convention; there is no schema
// registry.
type Message map[string]any

// Handler is a subscriber callback. A returned error is logged and
// swallowed — it never prevents delivery to the remaining subscribers of
// the same publish.
type Handler func(topic string, msg Message) error

// Stats reports bus-wide counters, useful for metrics and debugging.
type Stats struct {
	Topics          int
	TotalPublishes  int64
	TotalDeliveries int64
}

// Bus is a one-to-many, topic-keyed, synchronous message bus. Publish
// invokes every current subscriber of a topic, in subscription order, on
// the calling goroutine, before returning. Subscribers may themselves
// call Publish; the nested delivery completes before control returns to
// the outer subscriber.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string][]Handler

	publishes  int64
	deliveries int64
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a callback for a topic. Multiple callbacks per
// topic are permitted; insertion order is preserved.
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish invokes every subscriber of topic with msg. A snapshot of the
// subscriber list is taken at entry so that registrations made during
// delivery (including by a subscriber of this very publish) only affect
// future publishes. An unknown topic is a silent no-op.
func (b *Bus) Publish(topic string, msg Message) {
	b.mu.Lock()
	b.publishes++
	handlers := b.subscribers[topic]
	snapshot := make([]Handler, len(handlers))
	copy(snapshot, handlers)
	b.mu.Unlock()

	for _, h := range snapshot {
		if err := h(topic, msg); err != nil {
			log.GetLogger().WithField("topic", topic).Errorf("subscriber failure: %v", err)
		}
		b.mu.Lock()
		b.deliveries++
		b.mu.Unlock()
	}
}

// Stats returns a snapshot of bus-wide counters.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Topics:          len(b.subscribers),
		TotalPublishes:  b.publishes,
		TotalDeliveries: b.deliveries,
	}
}

// String renders a human-readable summary, handy in logs.
func (s Stats) String() string {
	return fmt.Sprintf("topics=%d publishes=%d deliveries=%d", s.Topics, s.TotalPublishes, s.TotalDeliveries)
}
