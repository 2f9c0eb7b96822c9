package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

type DeliveryRepo struct{ db *sql.DB }

func NewDeliveryRepo(db *sql.DB) repository.DeliveryRepository {
	return &DeliveryRepo{db: db}
}

const deliveryColumns = `id, job_id, uid, channel, status, provider_message_id, error_code, error_message, attempts, created_at, sent_at, delivered_at, read_at, meta`

// scanDelivery reads one ledger row from any row source with deliveryColumns order.
func scanDelivery(row interface{ Scan(...any) error }) (*entity.Delivery, error) {
	var d entity.Delivery
	var sentAt, deliveredAt, readAt sql.NullTime
	var metaJSON []byte
	if err := row.Scan(
		&d.ID, &d.JobID, &d.UID, &d.Channel, &d.Status,
		&d.ProviderMessageID, &d.ErrorCode, &d.ErrorMessage, &d.Attempts,
		&d.CreatedAt, &sentAt, &deliveredAt, &readAt, &metaJSON,
	); err != nil {
		return nil, err
	}
	if sentAt.Valid {
		d.SentAt = &sentAt.Time
	}
	if deliveredAt.Valid {
		d.DeliveredAt = &deliveredAt.Time
	}
	if readAt.Valid {
		d.ReadAt = &readAt.Time
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &d.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
	}
	return &d, nil
}

// Upsert writes a ledger row at its deterministic ID. The single-statement
// INSERT ... ON CONFLICT replaces the source document store's atomic
// single-document write: concurrent retries for the same (job, channel,
// recipient) converge on one row, with attempts incremented instead of
// overwritten.
func (repo *DeliveryRepo) Upsert(ctx context.Context, d *entity.Delivery) error {
	metaJSON, err := json.Marshal(d.Meta)
	if err != nil {
		return fmt.Errorf("Upsert: marshal meta: %w", err)
	}

	const query = `
INSERT INTO deliveries (id, job_id, uid, channel, status, provider_message_id, error_code, error_message, attempts, created_at, sent_at, meta)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
    status              = EXCLUDED.status,
    provider_message_id = EXCLUDED.provider_message_id,
    error_code          = EXCLUDED.error_code,
    error_message       = EXCLUDED.error_message,
    attempts            = deliveries.attempts + 1,
    sent_at             = EXCLUDED.sent_at,
    meta                = EXCLUDED.meta`
	var sentAt sql.NullTime
	if d.SentAt != nil {
		sentAt = sql.NullTime{Time: *d.SentAt, Valid: true}
	}
	_, err = repo.db.ExecContext(ctx, query,
		d.ID, d.JobID, d.UID, d.Channel, d.Status,
		d.ProviderMessageID, d.ErrorCode, d.ErrorMessage,
		d.CreatedAt, sentAt, metaJSON,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *DeliveryRepo) Get(ctx context.Context, id string) (*entity.Delivery, error) {
	const query = `
SELECT ` + deliveryColumns + `
FROM deliveries
WHERE id = $1
LIMIT 1`
	d, err := scanDelivery(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return d, nil
}

func (repo *DeliveryRepo) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*entity.Delivery, error) {
	if providerMessageID == "" {
		return nil, entity.ErrNotFound
	}
	// 一意性はストア側で強制されないため、最初の一致を採用する
	const query = `
SELECT ` + deliveryColumns + `
FROM deliveries
WHERE provider_message_id = $1
ORDER BY created_at ASC
LIMIT 1`
	d, err := scanDelivery(repo.db.QueryRowContext(ctx, query, providerMessageID))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByProviderMessageID: %w", err)
	}
	return d, nil
}

// PatchReceipt advances a row from an inbound receipt event. COALESCE keeps
// the timestamp stable when the identical event is replayed; the CASE
// expressions clear whichever of delivered_at/read_at does not apply so the
// row reflects only the latest transition.
func (repo *DeliveryRepo) PatchReceipt(ctx context.Context, id string, patch repository.ReceiptPatch) error {
	const query = `
UPDATE deliveries SET
    status        = $2,
    delivered_at  = CASE WHEN $2 = 'delivered' THEN COALESCE(delivered_at, now()) ELSE NULL END,
    read_at       = CASE WHEN $2 = 'read'      THEN COALESCE(read_at, now())      ELSE NULL END,
    error_code    = $3,
    error_message = $4
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id, patch.Status, patch.ErrorCode, patch.ErrorMessage)
	if err != nil {
		return fmt.Errorf("PatchReceipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *DeliveryRepo) ListByJob(ctx context.Context, jobID string) ([]*entity.Delivery, error) {
	const query = `
SELECT ` + deliveryColumns + `
FROM deliveries
WHERE job_id = $1
ORDER BY created_at ASC`
	rows, err := repo.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("ListByJob: %w", err)
	}
	defer func() { _ = rows.Close() }()

	deliveries := make([]*entity.Delivery, 0, 8)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByJob: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (repo *DeliveryRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) FROM deliveries GROUP BY status`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CountByStatus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("CountByStatus: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
