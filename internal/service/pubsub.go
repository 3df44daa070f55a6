package service

import (
	"sync"

	"github.com/msomdec/library-catalog/internal/domain"
)

// TopicBookAdded carries every newly created book to live subscribers.
const TopicBookAdded = "BOOK_ADDED"

// subscriberBuffer bounds how far a subscriber may lag before events are
// dropped for it. Publishing never blocks on a slow subscriber.
const subscriberBuffer = 16

// Broadcaster is an in-process publish/subscribe channel keyed by topic.
// It delivers each published event to every subscriber attached at publish
// time; subscribers attaching later never see past events. One long-lived
// instance is constructed in main and injected wherever events are published
// or consumed.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[string]map[int64]chan domain.BookWithAuthor
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[int64]chan domain.BookWithAuthor),
	}
}

// Subscribe attaches to a topic and returns the event channel together with a
// cancel function. Cancel is idempotent, closes the channel, and never
// affects other subscribers.
func (b *Broadcaster) Subscribe(topic string) (<-chan domain.BookWithAuthor, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	ch := make(chan domain.BookWithAuthor, subscriberBuffer)
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int64]chan domain.BookWithAuthor)
	}
	b.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers the event to every current subscriber of the topic. The
// send to each subscriber is non-blocking: a subscriber whose buffer is full
// misses the event rather than stalling the publisher.
func (b *Broadcaster) Publish(topic string, event domain.BookWithAuthor) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers are attached to a topic.
func (b *Broadcaster) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
