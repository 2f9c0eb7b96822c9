package repository

import (
	"context"

	"rental-notify/internal/domain/entity"
)

type InAppRepository interface {
	Create(ctx context.Context, item *entity.InAppItem) error
	ListByUser(ctx context.Context, uid string, limit int) ([]*entity.InAppItem, error)
	// MarkRead sets the read flag and readAt once, owner-scoped.
	// Returns entity.ErrNotFound when the item does not belong to uid.
	MarkRead(ctx context.Context, id, uid string) error
}
