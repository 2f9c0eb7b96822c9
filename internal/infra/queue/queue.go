// Package queue carries the job-created events from intake to the
// dispatch worker. Publishing is best-effort: a job already committed to
// the database stays queued if its event is lost, and an operator can
// re-dispatch it.
package queue

import (
	"context"
	"time"
)

// SubjectJobCreated is the subject new-job events are published on.
const SubjectJobCreated = "notify.jobs.created"

// JobCreatedEvent announces a freshly persisted notification job.
type JobCreatedEvent struct {
	JobID     string    `json:"jobId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher emits job-created events.
type Publisher interface {
	// PublishJobCreated emits event. Callers treat failures as
	// non-fatal; the job row is the source of truth.
	PublishJobCreated(ctx context.Context, event JobCreatedEvent) error

	// Close releases the underlying connection.
	Close() error
}

// Handler processes one job-created event. A non-nil error makes the
// consumer log and drop the event; redelivery is not part of the
// contract.
type Handler func(ctx context.Context, event JobCreatedEvent) error

// Consumer receives job-created events.
type Consumer interface {
	// ConsumeJobCreated subscribes handler to job-created events and
	// blocks until ctx is canceled.
	ConsumeJobCreated(ctx context.Context, handler Handler) error

	// Close releases the underlying connection.
	Close() error
}
