package notify

import (
	"sync"
	"sync/atomic"

	"github.com/reliefgrid/reliefgrid/internal/models"
)

// Broadcaster pushes freshly created notifications to in-process subscribers
// (the SSE stream handlers). Delivery is lossy: a subscriber that cannot keep
// up misses notifications rather than blocking the fan-out.
type Broadcaster struct {
	subscribers map[uint64]chan *models.Notification
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.Notification),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.Notification) {
	id := b.nextID.Add(1)
	ch := make(chan *models.Notification, 32)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(n *models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- n:
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

// Close closes all subscriber channels, causing streams to exit gracefully.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
