package notification

import (
	"context"
	"sync"

	"localcart-be/internal/metrics"
)

const DefaultBuffer = 16

// Broadcaster delivers live messages to the open streams of a shop.
type Broadcaster interface {
	Subscribe(shopID int64) *Subscription
	Unsubscribe(sub *Subscription)
	// Publish returns how many streams the message reached. A shop with no
	// open stream is not an error; the message is simply lost.
	Publish(ctx context.Context, shopID int64, msg Message) (int, error)
	Stats() Stats
}

// Subscription is one open stream. C is closed on Unsubscribe.
type Subscription struct {
	ShopID int64
	C      <-chan Message

	ch     chan Message
	closed bool
}

// Registry is the in-process Broadcaster. Streams of a shop receive
// messages in the order they subscribed. A stream whose buffer is full
// misses the message instead of blocking the publisher.
type Registry struct {
	mu     sync.Mutex
	subs   map[int64][]*Subscription
	buffer int

	published metrics.Counter
	delivered metrics.Counter
	dropped   metrics.Counter
}

func NewRegistry(buffer int) *Registry {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Registry{
		subs:   make(map[int64][]*Subscription),
		buffer: buffer,
	}
}

func (r *Registry) Subscribe(shopID int64) *Subscription {
	ch := make(chan Message, r.buffer)
	sub := &Subscription{ShopID: shopID, C: ch, ch: ch}

	r.mu.Lock()
	r.subs[shopID] = append(r.subs[shopID], sub)
	r.mu.Unlock()

	return sub
}

func (r *Registry) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)

	list := r.subs[sub.ShopID]
	for i, s := range list {
		if s == sub {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.subs, sub.ShopID)
		return
	}
	r.subs[sub.ShopID] = list
}

func (r *Registry) Publish(_ context.Context, shopID int64, msg Message) (int, error) {
	return r.deliver(shopID, msg), nil
}

func (r *Registry) deliver(shopID int64, msg Message) int {
	r.published.Inc()

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, sub := range r.subs[shopID] {
		select {
		case sub.ch <- msg:
			n++
			r.delivered.Inc()
		default:
			r.dropped.Inc()
		}
	}
	return n
}

// Count returns the number of open streams for a shop.
func (r *Registry) Count(shopID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[shopID])
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	st := Stats{Shops: len(r.subs)}
	for _, list := range r.subs {
		st.Subscribers += len(list)
	}
	r.mu.Unlock()

	st.Published = r.published.Load()
	st.Delivered = r.delivered.Load()
	st.Dropped = r.dropped.Load()
	return st
}
