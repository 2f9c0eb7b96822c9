package repository

import (
	"context"

	"rental-notify/internal/domain/entity"
)

type PreferencesRepository interface {
	// Get returns the stored record or entity.ErrNotFound. Lazy creation
	// of defaults is the preferences service's concern, not the store's.
	Get(ctx context.Context, uid string) (*entity.Preferences, error)
	Upsert(ctx context.Context, p *entity.Preferences) error
}
