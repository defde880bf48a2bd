// Package memory is an in-process messaging.Broker used when no external broker is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jwalitptl/dental-clinic/pkg/messaging"
)

const subscriberBuffer = 100

type Broker struct {
	mu     sync.RWMutex
	subs   map[string][]chan []byte
	closed bool
	done   chan struct{}
}

var _ messaging.Broker = (*Broker)(nil)

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string][]chan []byte),
		done: make(chan struct{}),
	}
}

// Publish marshals message to JSON and delivers it to every current subscriber of channel.
// A subscriber whose buffer is full misses the message.
func (b *Broker) Publish(_ context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("broker is closed")
	}
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of raw payloads; it is closed when ctx is done or the broker closes.
func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	ch := make(chan []byte, subscriberBuffer)
	b.subs[channel] = append(b.subs[channel], ch)

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(channel, ch)
		case <-b.done:
		}
	}()

	return ch, nil
}

func (b *Broker) unsubscribe(channel string, ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[channel]
	for i, c := range subs {
		if c == ch {
			b.subs[channel] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	for channel, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subs, channel)
	}
	return nil
}
