package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/infra/adapter/persistence/postgres"
)

func TestJobRepo_CreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	job := &entity.NotificationJob{
		ID:               "job1",
		TemplateID:       "booking.confirmed",
		Audience:         entity.Audience{Type: entity.AudienceTypeUser, UID: "U1"},
		Data:             map[string]string{"bookingId": "B42"},
		RequiredChannels: []entity.Channel{entity.ChannelInApp, entity.ChannelSMS},
		Topic:            "booking",
		Status:           entity.JobStatusQueued,
		CreatedAt:        now,
	}

	mock.ExpectExec(`INSERT INTO notification_jobs`).
		WithArgs(job.ID, job.TemplateID, job.Audience.Type, job.Audience.UID,
			sqlmock.AnyArg(), sqlmock.AnyArg(), job.Topic, job.Status, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewJobRepo(db)
	require.NoError(t, repo.Create(context.Background(), job))

	dataJSON, _ := json.Marshal(job.Data)
	channelsJSON, _ := json.Marshal(job.RequiredChannels)
	mock.ExpectQuery(`FROM notification_jobs`).
		WithArgs("job1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "template_id", "audience_type", "uid", "data", "required_channels", "topic", "status", "created_at",
		}).AddRow(job.ID, job.TemplateID, job.Audience.Type, job.Audience.UID,
			dataJSON, channelsJSON, job.Topic, job.Status, now))

	got, err := repo.Get(context.Background(), "job1")
	require.NoError(t, err)
	assert.Equal(t, job.TemplateID, got.TemplateID)
	assert.Equal(t, job.Data, got.Data)
	assert.Equal(t, job.RequiredChannels, got.RequiredChannels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM notification_jobs`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "template_id", "audience_type", "uid", "data", "required_channels", "topic", "status", "created_at",
		}))

	repo := postgres.NewJobRepo(db)
	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestJobRepo_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`UPDATE notification_jobs SET status`).
		WithArgs(entity.JobStatusProcessed, "job1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE notification_jobs SET status`).
		WithArgs(entity.JobStatusProcessed, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewJobRepo(db)
	require.NoError(t, repo.UpdateStatus(context.Background(), "job1", entity.JobStatusProcessed))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "missing", entity.JobStatusProcessed), entity.ErrNotFound)
}
