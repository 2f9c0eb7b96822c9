package db

import (
	"database/sql"
)

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notification_jobs (
    id                TEXT PRIMARY KEY,
    template_id       TEXT NOT NULL,
    audience_type     TEXT NOT NULL DEFAULT 'user',
    uid               TEXT NOT NULL,
    data              JSONB,
    required_channels JSONB,
    topic             TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'queued',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS deliveries (
    id                  TEXT PRIMARY KEY,
    job_id              TEXT NOT NULL,
    uid                 TEXT NOT NULL DEFAULT '',
    channel             TEXT NOT NULL,
    status              TEXT NOT NULL,
    provider_message_id TEXT NOT NULL DEFAULT '',
    error_code          TEXT NOT NULL DEFAULT '',
    error_message       TEXT NOT NULL DEFAULT '',
    attempts            INTEGER NOT NULL DEFAULT 1,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    sent_at             TIMESTAMPTZ,
    delivered_at        TIMESTAMPTZ,
    read_at             TIMESTAMPTZ,
    meta                JSONB
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notification_preferences (
    uid            TEXT PRIMARY KEY,
    language       TEXT NOT NULL DEFAULT 'en',
    timezone       TEXT NOT NULL DEFAULT 'UTC',
    channel_opt_in JSONB,
    topic_opt_in   JSONB,
    quiet_start    TEXT NOT NULL DEFAULT '',
    quiet_end      TEXT NOT NULL DEFAULT '',
    contact        JSONB,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS inapp_items (
    id         TEXT PRIMARY KEY,
    uid        TEXT NOT NULL,
    topic      TEXT NOT NULL DEFAULT '',
    title      TEXT NOT NULL,
    body       TEXT NOT NULL,
    action_url TEXT NOT NULL DEFAULT '',
    read       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    read_at    TIMESTAMPTZ
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS link_codes (
    code        TEXT PRIMARY KEY,
    uid         TEXT NOT NULL,
    used        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL,
    ttl_minutes INTEGER NOT NULL
)`); err != nil {
		return err
	}

	indexes := []string{
		// webhook受信時の相関検索用 (provider_message_id は一意とは限らない)
		`CREATE INDEX IF NOT EXISTS idx_deliveries_provider_message_id ON deliveries(provider_message_id) WHERE provider_message_id <> ''`,
		// ジョブ単位のレジャー読み出し用
		`CREATE INDEX IF NOT EXISTS idx_deliveries_job_id ON deliveries(job_id)`,
		// ダッシュボードのステータス集計用
		`CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status)`,
		// 通知センターの新着順リスト用
		`CREATE INDEX IF NOT EXISTS idx_inapp_items_uid_created ON inapp_items(uid, created_at DESC)`,
		// ユーザー毎の未使用コード監査用
		`CREATE INDEX IF NOT EXISTS idx_link_codes_uid ON link_codes(uid)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
