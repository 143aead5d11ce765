// Package queue provides the in-memory hand-off between the live event
// handlers and the dispatch worker. It is deliberately unbounded and
// non-durable: push delivery is best effort and a restart loses whatever was
// pending.
package queue

import (
	"context"
	"sync"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// NotificationQueue is a strict-FIFO, unbounded, multi-producer queue with
// one logical consumer. Enqueue never blocks; Dequeue suspends until an item
// arrives or the context is cancelled.
type NotificationQueue struct {
	mu    sync.Mutex
	items []live.NotificationEnvelope
	// wake carries one token per "queue may be non-empty" transition.
	// Capacity 1 is enough for a single consumer.
	wake chan struct{}
}

// NewNotificationQueue creates an empty queue.
func NewNotificationQueue() *NotificationQueue {
	return &NotificationQueue{
		wake: make(chan struct{}, 1),
	}
}

// Enqueue appends an envelope. It never blocks and never fails.
func (q *NotificationQueue) Enqueue(envelope live.NotificationEnvelope) {
	q.mu.Lock()
	q.items = append(q.items, envelope)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the oldest envelope, suspending the caller
// until one is available. When ctx is cancelled while waiting it returns
// ctx.Err() and never a phantom envelope.
func (q *NotificationQueue) Dequeue(ctx context.Context) (live.NotificationEnvelope, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			envelope := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return envelope, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return live.NotificationEnvelope{}, ctx.Err()
		case <-q.wake:
		}
	}
}

// Len returns the number of pending envelopes. Used by metrics.
func (q *NotificationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
