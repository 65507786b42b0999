// Package events carries in-process notifications between the report
// controller and the components reacting to deletes.
package events

import (
	"context"
	"sync"
	"time"
)

// DeleteCompleted is published once per dispatched delete, whether or not
// the source accepted it.
type DeleteCompleted struct {
	ID  string
	Err error
	At  time.Time
	// Origin identifies the publisher so it can recognise its own events.
	Origin string
}

// OK reports whether the delete succeeded.
func (e DeleteCompleted) OK() bool { return e.Err == nil }

type DeleteHandler func(ctx context.Context, ev DeleteCompleted)

// Bus is a synchronous fan-out. Handlers run on the publisher's goroutine
// in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]DeleteHandler
	order    []int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]DeleteHandler)}
}

// SubscribeDeletes registers h and returns a function removing it.
func (b *Bus) SubscribeDeletes(h DeleteHandler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *Bus) PublishDelete(ctx context.Context, ev DeleteCompleted) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	hs := make([]DeleteHandler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, ev)
	}
}
