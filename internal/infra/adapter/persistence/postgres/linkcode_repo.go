package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

type LinkCodeRepo struct{ db *sql.DB }

func NewLinkCodeRepo(db *sql.DB) repository.LinkCodeRepository {
	return &LinkCodeRepo{db: db}
}

// CreateIfAbsent inserts the code conditionally in one statement.
// ON CONFLICT DO NOTHING makes the uniqueness check and the insert atomic,
// so two callers drawing the same code cannot both win.
func (repo *LinkCodeRepo) CreateIfAbsent(ctx context.Context, code *entity.LinkCode) (bool, error) {
	const query = `
INSERT INTO link_codes (code, uid, used, created_at, expires_at, ttl_minutes)
VALUES ($1, $2, FALSE, $3, $4, $5)
ON CONFLICT (code) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query,
		code.Code, code.UID, code.CreatedAt, code.ExpiresAt, code.TTLMinutes,
	)
	if err != nil {
		return false, fmt.Errorf("CreateIfAbsent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("CreateIfAbsent: %w", err)
	}
	return n == 1, nil
}

func (repo *LinkCodeRepo) Get(ctx context.Context, code string) (*entity.LinkCode, error) {
	const query = `
SELECT code, uid, used, created_at, expires_at, ttl_minutes
FROM link_codes
WHERE code = $1
LIMIT 1`
	var c entity.LinkCode
	err := repo.db.QueryRowContext(ctx, query, code).Scan(
		&c.Code, &c.UID, &c.Used, &c.CreatedAt, &c.ExpiresAt, &c.TTLMinutes,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &c, nil
}

// Consume flips used exactly once; the used = FALSE predicate makes the
// flip conditional so a replay loses. Rows are retained for audit.
func (repo *LinkCodeRepo) Consume(ctx context.Context, code string) error {
	const query = `UPDATE link_codes SET used = TRUE WHERE code = $1 AND used = FALSE`
	res, err := repo.db.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("Consume: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
