package bus

import (
	"sync"
)

// Bus is a small in-process pub/sub used to back the live collection
// listeners. Writers publish the name of the collection they changed;
// subscribers re-query and push fresh snapshots to their consumers.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan string
	closed bool
}

func New() *Bus {
	return &Bus{
		subs: make(map[string]map[int]chan string),
	}
}

// Subscribe registers interest in a topic. The returned cancel function must
// be called by the owner when the subscription is no longer needed; after
// cancel returns, no further deliveries happen and the channel is closed.
func (b *Bus) Subscribe(topic string) (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Buffered so a slow consumer coalesces rather than blocks writers.
	ch := make(chan string, 8)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan string)
	}
	b.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subs[topic]; ok {
				if c, ok := subs[id]; ok {
					delete(subs, id)
					close(c)
				}
				if len(subs) == 0 {
					delete(b.subs, topic)
				}
			}
		})
	}

	return ch, cancel
}

// Publish notifies every subscriber of topic. Deliveries to subscribers whose
// buffer is full are dropped; a coalesced notification is enough because
// listeners re-query the store on every delivery.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, ch := range b.subs[topic] {
		select {
		case ch <- topic:
		default:
		}
	}
}

// Close tears down every subscription. Further Publish calls are no-ops and
// further Subscribe calls return an already-closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for topic, subs := range b.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
		delete(b.subs, topic)
	}
}
