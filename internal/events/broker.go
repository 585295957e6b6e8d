package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 256

// Event is one message fanned out to subscribers of a session.
type Event struct {
	Session string
	Kind    string
	Payload []byte
}

type subscriber struct {
	session string
	ch      chan Event
}

// Broker fans out events to subscribed stream clients.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]subscriber
	nextID      atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]subscriber),
	}
}

// Subscribe registers a client for one session ("" receives every session).
// The channel is buffered; slow consumers will have events dropped.
func (b *Broker) Subscribe(session string) (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = subscriber{session: session, ch: ch}
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(sub.ch)
	}
	b.mu.Unlock()
}

// Publish sends an event without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if sub.session != "" && sub.session != evt.Session {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// PublishJSON marshals v as the payload of a new event.
func (b *Broker) PublishJSON(session, kind string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Debug("event marshal failed", "kind", kind, "error", err)
		return
	}
	b.Publish(Event{Session: session, Kind: kind, Payload: payload})
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
