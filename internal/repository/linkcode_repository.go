package repository

import (
	"context"

	"rental-notify/internal/domain/entity"
)

type LinkCodeRepository interface {
	// CreateIfAbsent atomically inserts the code and reports whether the
	// insert happened. false means the code already exists; the caller
	// redraws. This conditional create replaces a check-then-insert
	// sequence that would race under concurrency.
	CreateIfAbsent(ctx context.Context, code *entity.LinkCode) (bool, error)

	Get(ctx context.Context, code string) (*entity.LinkCode, error)

	// Consume marks an unused code used, exactly once. Returns
	// entity.ErrNotFound when the code does not exist or was already used.
	// Expiry is the caller's check; used rows are retained for audit.
	Consume(ctx context.Context, code string) error
}
