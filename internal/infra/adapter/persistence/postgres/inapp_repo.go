package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

type InAppRepo struct{ db *sql.DB }

func NewInAppRepo(db *sql.DB) repository.InAppRepository {
	return &InAppRepo{db: db}
}

func (repo *InAppRepo) Create(ctx context.Context, item *entity.InAppItem) error {
	const query = `
INSERT INTO inapp_items (id, uid, topic, title, body, action_url, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		item.ID, item.UID, item.Topic, item.Title, item.Body, item.ActionURL, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *InAppRepo) ListByUser(ctx context.Context, uid string, limit int) ([]*entity.InAppItem, error) {
	const query = `
SELECT id, uid, topic, title, body, action_url, read, created_at, read_at
FROM inapp_items
WHERE uid = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.InAppItem, 0, limit)
	for rows.Next() {
		var item entity.InAppItem
		var readAt sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.UID, &item.Topic, &item.Title, &item.Body,
			&item.ActionURL, &item.Read, &item.CreatedAt, &readAt,
		); err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		if readAt.Valid {
			item.ReadAt = &readAt.Time
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// MarkRead is owner-scoped; the uid predicate doubles as the access check.
// COALESCE keeps the original read_at on repeated calls.
func (repo *InAppRepo) MarkRead(ctx context.Context, id, uid string) error {
	const query = `
UPDATE inapp_items SET
    read    = TRUE,
    read_at = COALESCE(read_at, now())
WHERE id = $1 AND uid = $2`
	res, err := repo.db.ExecContext(ctx, query, id, uid)
	if err != nil {
		return fmt.Errorf("MarkRead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
