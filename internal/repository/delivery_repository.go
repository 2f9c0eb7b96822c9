package repository

import (
	"context"

	"rental-notify/internal/domain/entity"
)

// ReceiptPatch is the normalized form of an inbound provider receipt event
// applied to an existing ledger row by a webhook receiver.
type ReceiptPatch struct {
	Status      string // delivered | read | failed
	ErrorCode   string
	ErrorMessage string
}

type DeliveryRepository interface {
	// Upsert writes a ledger row at its deterministic ID. A second attempt
	// for the same (job, channel, recipient) overwrites the delivery fields
	// and increments the attempts counter instead of duplicating the row.
	Upsert(ctx context.Context, d *entity.Delivery) error

	Get(ctx context.Context, id string) (*entity.Delivery, error)

	// GetByProviderMessageID finds the row a provider receipt correlates to.
	// At most one match is expected; the first is returned if the store
	// cannot enforce uniqueness. Returns entity.ErrNotFound when absent.
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*entity.Delivery, error)

	// PatchReceipt advances a row's status from an inbound receipt event,
	// setting the matching timestamp and clearing the non-applicable one of
	// deliveredAt/readAt. Replaying the same event is a no-op in effect.
	PatchReceipt(ctx context.Context, id string, patch ReceiptPatch) error

	ListByJob(ctx context.Context, jobID string) ([]*entity.Delivery, error)

	// CountByStatus feeds the ledger-rows prometheus gauge.
	CountByStatus(ctx context.Context) (map[string]int, error)
}
