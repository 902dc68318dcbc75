// Package events fans newly persisted incidents out to in-process
// subscribers. Incidents are broadcast only after their batch commits, so a
// subscriber never sees a record that later rolled back.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
)

type Broadcaster struct {
	subscribers map[string]chan models.Incident
	mu          sync.RWMutex
	closed      bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan models.Incident),
	}
}

// Subscribe registers a new subscriber and returns its id and channel. The
// channel buffers one batch worth of incidents; slow subscribers drop.
func (b *Broadcaster) Subscribe() (string, <-chan models.Incident) {
	id := uuid.NewString()
	ch := make(chan models.Incident, 100)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(inc models.Incident) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- inc:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing consumers to exit
// gracefully. Further Subscribe calls get an already-closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
