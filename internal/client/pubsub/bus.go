// Package pubsub provides a minimal publish/subscribe hub used to fan out
// local-cache changes (e.g. lockout updates) to sibling client instances
// without polling the backend. The Bus interface is the boundary; any
// mechanism with same-process or cross-process reach can implement it.
package pubsub

import "sync"

// Bus publishes string payloads on named topics.
type Bus interface {
	// Publish delivers payload to every current subscriber of topic.
	// Delivery is best-effort: a subscriber that is not keeping up is
	// skipped rather than blocking the publisher.
	Publish(topic, payload string)
	// Subscribe returns a channel receiving payloads for topic and a cancel
	// function that removes the subscription and closes the channel.
	Subscribe(topic string) (<-chan string, func())
}

const subscriberBuffer = 8

// ChannelBus is the in-process Bus implementation.
type ChannelBus struct {
	mu   sync.Mutex
	subs map[string]map[int]chan string
	next int
}

func NewChannelBus() *ChannelBus {
	return &ChannelBus{subs: make(map[string]map[int]chan string)}
}

func (b *ChannelBus) Publish(topic, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[topic] {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (b *ChannelBus) Subscribe(topic string) (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan string)
	}
	id := b.next
	b.next++

	ch := make(chan string, subscriberBuffer)
	b.subs[topic][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[topic][id]; ok {
			delete(b.subs[topic], id)
			close(sub)
		}
	}
	return ch, cancel
}
