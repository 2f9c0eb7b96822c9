package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// MemoryQueue is an in-process Publisher/Consumer pair for tests and
// single-binary deployments without a NATS server.
type MemoryQueue struct {
	events chan JobCreatedEvent

	mu     sync.Mutex
	closed bool
}

// NewMemoryQueue creates a MemoryQueue buffering up to size events.
// Publishing to a full buffer fails instead of blocking intake.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{events: make(chan JobCreatedEvent, size)}
}

func (q *MemoryQueue) PublishJobCreated(ctx context.Context, event JobCreatedEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue closed")
	}

	select {
	case q.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue full, dropping job event %s", event.JobID)
	}
}

func (q *MemoryQueue) ConsumeJobCreated(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-q.events:
			if !ok {
				return nil
			}
			if err := handler(ctx, event); err != nil {
				slog.Error("job event handler failed",
					slog.String("job_id", event.JobID),
					slog.Any("error", err))
			}
		}
	}
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.events)
	return nil
}
