package prefs

import (
	"context"
	"testing"

	"rental-notify/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrefsRepo struct {
	records map[string]*entity.Preferences
	upserts int
}

func newFakePrefsRepo() *fakePrefsRepo {
	return &fakePrefsRepo{records: map[string]*entity.Preferences{}}
}

func (f *fakePrefsRepo) Get(ctx context.Context, uid string) (*entity.Preferences, error) {
	if p, ok := f.records[uid]; ok {
		return p, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakePrefsRepo) Upsert(ctx context.Context, p *entity.Preferences) error {
	f.records[p.UID] = p
	f.upserts++
	return nil
}

func TestGet(t *testing.T) {
	t.Run("lazily creates defaults", func(t *testing.T) {
		repo := newFakePrefsRepo()
		svc := NewService(repo)

		p, err := svc.Get(context.Background(), "u1")
		require.NoError(t, err)

		assert.Equal(t, "u1", p.UID)
		assert.Equal(t, "en", p.Language)
		assert.Equal(t, "UTC", p.Timezone)
		assert.True(t, p.ChannelEnabled(entity.ChannelEmail))
		assert.Equal(t, 1, repo.upserts)

		// Second read returns the stored record without re-creating
		_, err = svc.Get(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, repo.upserts)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := NewService(newFakePrefsRepo()).Get(context.Background(), "")
		assert.ErrorIs(t, err, entity.ErrUnauthenticated)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("stores validated fields", func(t *testing.T) {
		repo := newFakePrefsRepo()
		svc := NewService(repo)

		p, err := svc.Update(context.Background(), "u1", UpdateInput{
			Language:     "ja",
			Timezone:     "Asia/Tokyo",
			ChannelOptIn: map[entity.Channel]bool{entity.ChannelSMS: false},
			QuietHours:   entity.QuietHours{Start: "22:00", End: "07:00"},
			Contact:      entity.Contact{Email: "tenant@example.com"},
		})
		require.NoError(t, err)

		assert.Equal(t, "ja", p.Language)
		assert.Equal(t, "Asia/Tokyo", p.Timezone)
		assert.False(t, p.ChannelEnabled(entity.ChannelSMS))
		assert.True(t, p.ChannelEnabled(entity.ChannelEmail))
		assert.Equal(t, "tenant@example.com", repo.records["u1"].Contact.Email)
	})

	t.Run("rejects malformed quiet hours", func(t *testing.T) {
		svc := NewService(newFakePrefsRepo())

		_, err := svc.Update(context.Background(), "u1", UpdateInput{
			QuietHours: entity.QuietHours{Start: "25:00", End: "07:00"},
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		svc := NewService(newFakePrefsRepo())

		_, err := svc.Update(context.Background(), "u1", UpdateInput{Timezone: "Mars/Olympus"})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("rejects unknown channel in opt-in map", func(t *testing.T) {
		svc := NewService(newFakePrefsRepo())

		_, err := svc.Update(context.Background(), "u1", UpdateInput{
			ChannelOptIn: map[entity.Channel]bool{entity.Channel("fax"): true},
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("empty fields fall back to defaults", func(t *testing.T) {
		repo := newFakePrefsRepo()
		svc := NewService(repo)

		p, err := svc.Update(context.Background(), "u1", UpdateInput{})
		require.NoError(t, err)
		assert.Equal(t, "en", p.Language)
		assert.Equal(t, "UTC", p.Timezone)
		assert.NotNil(t, p.ChannelOptIn)
		assert.NotNil(t, p.TopicOptIn)
	})
}
