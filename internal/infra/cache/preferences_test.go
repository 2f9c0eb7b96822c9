package cache

import (
	"context"
	"testing"
	"time"

	"rental-notify/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrefsRepo struct {
	records map[string]*entity.Preferences
	gets    int
	upserts int
}

func (f *fakePrefsRepo) Get(ctx context.Context, uid string) (*entity.Preferences, error) {
	f.gets++
	if p, ok := f.records[uid]; ok {
		return p, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakePrefsRepo) Upsert(ctx context.Context, p *entity.Preferences) error {
	f.upserts++
	f.records[p.UID] = p
	return nil
}

// unreachableClient points at a port nothing listens on. The decorator
// must degrade to the inner store when Redis is down.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
		PoolSize:    1,
	})
}

func TestCachedPreferencesRepository_DegradesWithoutRedis(t *testing.T) {
	inner := &fakePrefsRepo{records: map[string]*entity.Preferences{
		"u1": entity.DefaultPreferences("u1"),
	}}
	repo := NewCachedPreferencesRepository(inner, unreachableClient())

	p, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, 1, inner.gets)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCachedPreferencesRepository_UpsertWritesThrough(t *testing.T) {
	inner := &fakePrefsRepo{records: map[string]*entity.Preferences{}}
	repo := NewCachedPreferencesRepository(inner, unreachableClient())

	p := entity.DefaultPreferences("u2")
	p.Language = "ja"

	// Cache invalidation failing must not fail the write
	require.NoError(t, repo.Upsert(context.Background(), p))
	assert.Equal(t, 1, inner.upserts)
	assert.Equal(t, "ja", inner.records["u2"].Language)
}
