// Package inapp is the read side of the notification center: listing a
// user's items and marking them read. Items are written by the inapp
// channel worker.
package inapp

import (
	"context"
	"fmt"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service exposes the notification center.
type Service interface {
	// List returns the user's items, newest first. limit is clamped to
	// [1, 200], zero means the default page size.
	List(ctx context.Context, uid string, limit int) ([]*entity.InAppItem, error)

	// MarkRead sets the read flag once, owner-scoped. Items belonging to
	// another user surface as entity.ErrNotFound rather than a
	// permission error so ids cannot be probed.
	MarkRead(ctx context.Context, uid, itemID string) error
}

type service struct {
	repo repository.InAppRepository
	now  func() time.Time
}

// NewService creates the notification-center service.
func NewService(repo repository.InAppRepository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) List(ctx context.Context, uid string, limit int) ([]*entity.InAppItem, error) {
	if uid == "" {
		return nil, entity.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.repo.ListByUser(ctx, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("list inapp items: %w", err)
	}
	return items, nil
}

func (s *service) MarkRead(ctx context.Context, uid, itemID string) error {
	if uid == "" {
		return entity.ErrUnauthenticated
	}
	if itemID == "" {
		return &entity.ValidationError{Field: "id", Message: "item id is required"}
	}

	if err := s.repo.MarkRead(ctx, itemID, uid); err != nil {
		return fmt.Errorf("mark item %s read: %w", itemID, err)
	}
	return nil
}
