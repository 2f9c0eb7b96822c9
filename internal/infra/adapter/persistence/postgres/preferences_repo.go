package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

type PreferencesRepo struct{ db *sql.DB }

func NewPreferencesRepo(db *sql.DB) repository.PreferencesRepository {
	return &PreferencesRepo{db: db}
}

func (repo *PreferencesRepo) Get(ctx context.Context, uid string) (*entity.Preferences, error) {
	const query = `
SELECT uid, language, timezone, channel_opt_in, topic_opt_in, quiet_start, quiet_end, contact, updated_at
FROM notification_preferences
WHERE uid = $1
LIMIT 1`
	var p entity.Preferences
	var channelJSON, topicJSON, contactJSON []byte
	err := repo.db.QueryRowContext(ctx, query, uid).Scan(
		&p.UID, &p.Language, &p.Timezone,
		&channelJSON, &topicJSON,
		&p.QuietHours.Start, &p.QuietHours.End,
		&contactJSON, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	p.ChannelOptIn = map[entity.Channel]bool{}
	if len(channelJSON) > 0 {
		if err := json.Unmarshal(channelJSON, &p.ChannelOptIn); err != nil {
			return nil, fmt.Errorf("Get: unmarshal channel_opt_in: %w", err)
		}
	}
	p.TopicOptIn = map[string]bool{}
	if len(topicJSON) > 0 {
		if err := json.Unmarshal(topicJSON, &p.TopicOptIn); err != nil {
			return nil, fmt.Errorf("Get: unmarshal topic_opt_in: %w", err)
		}
	}
	if len(contactJSON) > 0 {
		if err := json.Unmarshal(contactJSON, &p.Contact); err != nil {
			return nil, fmt.Errorf("Get: unmarshal contact: %w", err)
		}
	}
	return &p, nil
}

func (repo *PreferencesRepo) Upsert(ctx context.Context, p *entity.Preferences) error {
	channelJSON, err := json.Marshal(p.ChannelOptIn)
	if err != nil {
		return fmt.Errorf("Upsert: marshal channel_opt_in: %w", err)
	}
	topicJSON, err := json.Marshal(p.TopicOptIn)
	if err != nil {
		return fmt.Errorf("Upsert: marshal topic_opt_in: %w", err)
	}
	contactJSON, err := json.Marshal(p.Contact)
	if err != nil {
		return fmt.Errorf("Upsert: marshal contact: %w", err)
	}

	const query = `
INSERT INTO notification_preferences (uid, language, timezone, channel_opt_in, topic_opt_in, quiet_start, quiet_end, contact, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (uid) DO UPDATE SET
    language       = EXCLUDED.language,
    timezone       = EXCLUDED.timezone,
    channel_opt_in = EXCLUDED.channel_opt_in,
    topic_opt_in   = EXCLUDED.topic_opt_in,
    quiet_start    = EXCLUDED.quiet_start,
    quiet_end      = EXCLUDED.quiet_end,
    contact        = EXCLUDED.contact,
    updated_at     = now()`
	_, err = repo.db.ExecContext(ctx, query,
		p.UID, p.Language, p.Timezone,
		channelJSON, topicJSON,
		p.QuietHours.Start, p.QuietHours.End,
		contactJSON,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
