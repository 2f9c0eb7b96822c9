// Package postgres implements the repository interfaces on PostgreSQL via
// database/sql with the pgx stdlib driver. Each write targets a single row;
// no cross-row transaction exists on the notification hot path.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

type JobRepo struct{ db *sql.DB }

func NewJobRepo(db *sql.DB) repository.JobRepository {
	return &JobRepo{db: db}
}

func (repo *JobRepo) Create(ctx context.Context, job *entity.NotificationJob) error {
	dataJSON, err := json.Marshal(job.Data)
	if err != nil {
		return fmt.Errorf("Create: marshal data: %w", err)
	}
	channelsJSON, err := json.Marshal(job.RequiredChannels)
	if err != nil {
		return fmt.Errorf("Create: marshal required_channels: %w", err)
	}

	const query = `
INSERT INTO notification_jobs (id, template_id, audience_type, uid, data, required_channels, topic, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = repo.db.ExecContext(ctx, query,
		job.ID, job.TemplateID, job.Audience.Type, job.Audience.UID,
		dataJSON, channelsJSON, job.Topic, job.Status, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *JobRepo) Get(ctx context.Context, id string) (*entity.NotificationJob, error) {
	const query = `
SELECT id, template_id, audience_type, uid, data, required_channels, topic, status, created_at
FROM notification_jobs
WHERE id = $1
LIMIT 1`
	var job entity.NotificationJob
	var dataJSON, channelsJSON []byte
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.TemplateID, &job.Audience.Type, &job.Audience.UID,
		&dataJSON, &channelsJSON, &job.Topic, &job.Status, &job.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &job.Data); err != nil {
			return nil, fmt.Errorf("Get: unmarshal data: %w", err)
		}
	}
	if len(channelsJSON) > 0 {
		if err := json.Unmarshal(channelsJSON, &job.RequiredChannels); err != nil {
			return nil, fmt.Errorf("Get: unmarshal required_channels: %w", err)
		}
	}
	return &job, nil
}

func (repo *JobRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE notification_jobs SET status = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
