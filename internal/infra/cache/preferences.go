// Package cache provides a Redis cache-aside layer over the preferences
// store. Dispatch reads preferences for every job; those reads dominate
// the store's traffic and tolerate short staleness, so they are the one
// place a cache pays for itself.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	prefsKeyPrefix = "prefs:"
	prefsTTL       = 5 * time.Minute
)

// cacheMissSentinel distinguishes a cached "no row" from a cold key so a
// user with no preferences does not hammer the database.
const cacheMissSentinel = "__absent__"

// CachedPreferencesRepository decorates a PreferencesRepository with
// cache-aside reads and write-through invalidation. Redis failures
// degrade to the underlying store, never to an error.
type CachedPreferencesRepository struct {
	inner  repository.PreferencesRepository
	client *redis.Client
}

// NewCachedPreferencesRepository creates the decorator around inner.
func NewCachedPreferencesRepository(inner repository.PreferencesRepository, client *redis.Client) *CachedPreferencesRepository {
	return &CachedPreferencesRepository{inner: inner, client: client}
}

func prefsKey(uid string) string { return prefsKeyPrefix + uid }

// Get returns the cached record when present, falling back to the store
// and populating the cache on a miss.
func (c *CachedPreferencesRepository) Get(ctx context.Context, uid string) (*entity.Preferences, error) {
	key := prefsKey(uid)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(raw) == cacheMissSentinel {
			return nil, entity.ErrNotFound
		}
		var p entity.Preferences
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		// Corrupt entry: drop it and fall through to the store
		_ = c.client.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
		// cold key
	default:
		slog.Warn("preferences cache read failed",
			slog.String("uid", uid),
			slog.Any("error", err))
	}

	p, err := c.inner.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			c.set(ctx, key, []byte(cacheMissSentinel))
		}
		return nil, err
	}

	if raw, jsonErr := json.Marshal(p); jsonErr == nil {
		c.set(ctx, key, raw)
	}
	return p, nil
}

// Upsert writes through to the store and invalidates the cached entry.
func (c *CachedPreferencesRepository) Upsert(ctx context.Context, p *entity.Preferences) error {
	if err := c.inner.Upsert(ctx, p); err != nil {
		return err
	}

	if err := c.client.Del(ctx, prefsKey(p.UID)).Err(); err != nil {
		slog.Warn("preferences cache invalidation failed",
			slog.String("uid", p.UID),
			slog.Any("error", err))
	}
	return nil
}

func (c *CachedPreferencesRepository) set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, prefsTTL).Err(); err != nil {
		slog.Warn("preferences cache write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// NewClient connects to Redis at addr and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
