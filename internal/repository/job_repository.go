package repository

import (
	"context"

	"rental-notify/internal/domain/entity"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.NotificationJob) error
	Get(ctx context.Context, id string) (*entity.NotificationJob, error)
	// UpdateStatus writes the terminal status the dispatcher assigns after
	// fan-out. Jobs are otherwise immutable.
	UpdateStatus(ctx context.Context, id, status string) error
}
