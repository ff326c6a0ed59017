package bus

import (
	"strings"
	"sync"
	"time"
)

// Bus is an in-process publish/subscribe bus. Slices publish a change event
// after every transition; views subscribe by kind prefix and re-render.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]*subscriber
	seq  uint64
}

type subscriber struct {
	prefixes []string
	ch       chan Event
}

func (s *subscriber) wants(kind string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(kind, p) {
			return true
		}
	}
	return false
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{subs: make(map[uint64]*subscriber)}
}

// Publish delivers an event to every subscriber with a matching prefix.
// Delivery never blocks: a subscriber whose buffer is full misses the event.
func (b *Bus) Publish(kind string, payload any) {
	evt := Event{Kind: kind, Timestamp: time.Now(), Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.wants(kind) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Subscribe returns a channel receiving events whose kind starts with any of
// prefixes, and a cancel function that unsubscribes and closes the channel.
func (b *Bus) Subscribe(bufSize int, prefixes ...string) (<-chan Event, func()) {
	sub := &subscriber{prefixes: prefixes, ch: make(chan Event, bufSize)}

	b.mu.Lock()
	id := b.seq
	b.seq++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
}
