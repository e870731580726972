package broadcast

import (
	"context"
	"encoding/json"
	"sync"
)

const subscriberBuffer = 64

// InMemory fans messages out through channels inside one process. It backs
// tests and single-node deployments; multi-node deployments use Redis.
type InMemory struct {
	mu   sync.RWMutex
	subs map[string]map[int]chan Message
	next int
}

func NewInMemory() *InMemory {
	return &InMemory{subs: make(map[string]map[int]chan Message)}
}

// Publish delivers to every subscriber of the board. Slow subscribers that
// have filled their buffer are skipped rather than blocking the dispatcher.
func (b *InMemory) Publish(_ context.Context, boardUID, event string, data json.RawMessage) error {
	msg := Message{Board: boardUID, Event: event, Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[boardUID] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (b *InMemory) Subscribe(_ context.Context, boardUID string) (<-chan Message, func(), error) {
	ch := make(chan Message, subscriberBuffer)

	b.mu.Lock()
	if b.subs[boardUID] == nil {
		b.subs[boardUID] = make(map[int]chan Message)
	}
	id := b.next
	b.next++
	b.subs[boardUID][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[boardUID], id)
			if len(b.subs[boardUID]) == 0 {
				delete(b.subs, boardUID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
