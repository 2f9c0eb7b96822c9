// Package job implements notification-job intake: validate, persist as
// queued, then announce the job on the queue for the dispatcher.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/infra/queue"
	"rental-notify/internal/repository"

	"github.com/google/uuid"
)

// CreateInput is one intake request.
type CreateInput struct {
	TemplateID       string
	Audience         entity.Audience
	Data             map[string]string
	RequiredChannels []entity.Channel
	Topic            string
}

// Service accepts notification jobs.
type Service interface {
	// Create validates in against callerUID (self-service only), persists
	// the job as queued and publishes a JobCreated event. The event is
	// best-effort: the persisted row is the source of truth and Create
	// succeeds even if publishing fails.
	Create(ctx context.Context, callerUID string, in CreateInput) (*entity.NotificationJob, error)
}

type service struct {
	jobs      repository.JobRepository
	publisher queue.Publisher
	now       func() time.Time
}

// NewService creates the intake service.
func NewService(jobs repository.JobRepository, publisher queue.Publisher) Service {
	return &service{jobs: jobs, publisher: publisher, now: time.Now}
}

func (s *service) Create(ctx context.Context, callerUID string, in CreateInput) (*entity.NotificationJob, error) {
	if callerUID == "" {
		return nil, entity.ErrUnauthenticated
	}
	if in.Audience.UID != callerUID {
		return nil, fmt.Errorf("audience uid %q is not the caller: %w", in.Audience.UID, entity.ErrPermissionDenied)
	}

	job := &entity.NotificationJob{
		ID:               uuid.New().String(),
		TemplateID:       in.TemplateID,
		Audience:         in.Audience,
		Data:             in.Data,
		RequiredChannels: in.RequiredChannels,
		Topic:            in.Topic,
		Status:           entity.JobStatusQueued,
		CreatedAt:        s.now(),
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	event := queue.JobCreatedEvent{JobID: job.ID, CreatedAt: job.CreatedAt}
	if err := s.publisher.PublishJobCreated(ctx, event); err != nil {
		// The job stays queued and an operator can re-dispatch it.
		slog.Error("publish job event failed",
			slog.String("job_id", job.ID),
			slog.Any("error", err))
	}

	slog.Info("job accepted",
		slog.String("job_id", job.ID),
		slog.String("uid", job.Audience.UID),
		slog.String("template_id", job.TemplateID))
	return job, nil
}
