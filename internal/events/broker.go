package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/perola/clusterd/internal/metrics"
)

// Broker fans events out to subscribers. Each subscriber gets a buffered
// channel; when a subscriber's buffer is full the event is dropped for that
// subscriber rather than blocking the publisher.
type Broker struct {
	logger zerolog.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

func NewBroker(buffer int, logger zerolog.Logger) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broker{
		logger: logger,
		buffer: buffer,
		subs:   make(map[int]chan Event),
	}
}

// Publish delivers the event to every current subscriber.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metrics.EventsPublished.WithLabelValues(evt.Type).Inc()
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			metrics.EventsDropped.Inc()
			b.logger.Debug().
				Int("subscriber", id).
				Str("type", evt.Type).
				Str("cluster_id", evt.ClusterID).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// Subscribe registers a new subscriber and returns its id and channel. The
// channel is closed by Unsubscribe.
func (b *Broker) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
