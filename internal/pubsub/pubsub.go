// Package pubsub is the process-wide event fan-out: named topics, one
// payload stream per subscriber. It backs the userAdded subscription.
package pubsub

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan any
}

type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*subscriber]struct{})}
}

// Publish delivers payload to every current subscriber of topic. A
// subscriber that has fallen subscriberBuffer payloads behind misses the
// event; delivery guarantees beyond that belong to the transport, not here.
func (h *Hub) Publish(topic string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.topics[topic] {
		select {
		case sub.ch <- payload:
		default:
		}
	}
}

// Subscribe registers a stream for topic. The stream is closed and the
// subscriber removed when ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context, topic string) <-chan any {
	sub := &subscriber{ch: make(chan any, subscriberBuffer)}

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if subs, ok := h.topics[topic]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
		h.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch
}
