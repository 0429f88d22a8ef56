package pubsub

import (
	"context"
	"sync"
)

// memoryPubSub delivers messages in-process. It backs single-instance
// deployments and tests.
type memoryPubSub struct {
	mu     sync.Mutex
	subs   map[string][]chan Message
	closed bool
}

func NewMemoryPubSub() PubSub {
	return &memoryPubSub{subs: make(map[string][]chan Message)}
}

func (m *memoryPubSub) Publish(ctx context.Context, channel string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, ch := range m.subs[channel] {
		select {
		case ch <- Message{Channel: channel, Payload: message}:
		case <-ctx.Done():
			return ctx.Err()
		default:
			// slow subscriber; drop rather than block the publisher
		}
	}
	return nil
}

func (m *memoryPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	ch := make(chan Message, 16)
	for _, c := range channels {
		m.subs[c] = append(m.subs[c], ch)
	}
	return ch, nil
}

func (m *memoryPubSub) Unsubscribe(ctx context.Context, channels ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range channels {
		delete(m.subs, c)
	}
	return nil
}

func (m *memoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	seen := make(map[chan Message]struct{})
	for _, chans := range m.subs {
		for _, ch := range chans {
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			close(ch)
		}
	}
	m.subs = nil
	return nil
}
