// Package prefs manages per-user notification preferences. Records are
// created lazily with defaults on first read; ownership is enforced by
// the HTTP auth middleware, so uid here is always the caller's.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

// UpdateInput carries the user-editable preference fields. Nil maps mean
// "leave empty", matching the absent=opted-in default.
type UpdateInput struct {
	Language     string
	Timezone     string
	ChannelOptIn map[entity.Channel]bool
	TopicOptIn   map[string]bool
	QuietHours   entity.QuietHours
	Contact      entity.Contact
}

// Service reads and updates preferences.
type Service interface {
	// Get returns the user's record, creating it with defaults when absent.
	Get(ctx context.Context, uid string) (*entity.Preferences, error)

	// Update replaces the user-editable fields after validation.
	Update(ctx context.Context, uid string, in UpdateInput) (*entity.Preferences, error)
}

type service struct {
	repo repository.PreferencesRepository
	now  func() time.Time
}

// NewService creates the preferences service.
func NewService(repo repository.PreferencesRepository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Get(ctx context.Context, uid string) (*entity.Preferences, error) {
	if uid == "" {
		return nil, entity.ErrUnauthenticated
	}

	p, err := s.repo.Get(ctx, uid)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	p = entity.DefaultPreferences(uid)
	p.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("create default preferences: %w", err)
	}

	slog.Info("created default preferences", slog.String("uid", uid))
	return p, nil
}

func (s *service) Update(ctx context.Context, uid string, in UpdateInput) (*entity.Preferences, error) {
	if uid == "" {
		return nil, entity.ErrUnauthenticated
	}

	if err := entity.ValidateQuietHours(in.QuietHours); err != nil {
		return nil, err
	}
	if in.Timezone != "" {
		if err := entity.ValidateTimezone(in.Timezone); err != nil {
			return nil, err
		}
	}
	for ch := range in.ChannelOptIn {
		if !ch.IsValid() {
			return nil, &entity.ValidationError{Field: "channelOptIn", Message: "unknown channel: " + string(ch)}
		}
	}

	p := &entity.Preferences{
		UID:          uid,
		Language:     in.Language,
		Timezone:     in.Timezone,
		ChannelOptIn: in.ChannelOptIn,
		TopicOptIn:   in.TopicOptIn,
		QuietHours:   in.QuietHours,
		Contact:      in.Contact,
		UpdatedAt:    s.now(),
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	if p.ChannelOptIn == nil {
		p.ChannelOptIn = map[entity.Channel]bool{}
	}
	if p.TopicOptIn == nil {
		p.TopicOptIn = map[string]bool{}
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("store preferences: %w", err)
	}
	return p, nil
}
