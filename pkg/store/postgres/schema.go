package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlSessionRecords = `
CREATE TABLE IF NOT EXISTS session_records (
    id                   TEXT              PRIMARY KEY,
    user_id              TEXT              NOT NULL,
    session_id           TEXT              NOT NULL,
    sub_session_id       TEXT              NOT NULL,
    content_id           TEXT              NOT NULL DEFAULT '',
    content_type         TEXT              NOT NULL,
    language             TEXT              NOT NULL,
    original_text        TEXT              NOT NULL,
    response_text        TEXT              NOT NULL,
    construct_text       TEXT              NOT NULL DEFAULT '',
    confidence_scores    JSONB             NOT NULL DEFAULT '[]',
    missing_token_scores JSONB             NOT NULL DEFAULT '[]',
    anomaly_scores       JSONB             NOT NULL DEFAULT '[]',
    error_rate           JSONB             NOT NULL DEFAULT '{}',
    count_diff           JSONB             NOT NULL DEFAULT '{}',
    edit_distance        JSONB             NOT NULL DEFAULT '{}',
    fluency_score        DOUBLE PRECISION  NOT NULL DEFAULT 0,
    silence_pause        JSONB             NOT NULL DEFAULT '{}',
    repetition_count     INTEGER           NOT NULL DEFAULT 0,
    prosody_fluency      JSONB,
    is_retry             BOOLEAN           NOT NULL DEFAULT FALSE,
    mode                 TEXT              NOT NULL DEFAULT 'offline',
    created_at           TIMESTAMPTZ       NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_session_records_user_language
    ON session_records (user_id, language, created_at);

CREATE INDEX IF NOT EXISTS idx_session_records_sub_session
    ON session_records (user_id, sub_session_id, created_at);
`

const ddlMilestoneRecords = `
CREATE TABLE IF NOT EXISTS milestone_records (
    id              BIGSERIAL    PRIMARY KEY,
    user_id         TEXT         NOT NULL,
    session_id      TEXT         NOT NULL DEFAULT '',
    sub_session_id  TEXT         NOT NULL DEFAULT '',
    language        TEXT         NOT NULL,
    level           TEXT         NOT NULL,
    sub_level       TEXT         NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_milestone_records_user_language
    ON milestone_records (user_id, language, created_at DESC);
`

const ddlHexcodes = `
CREATE TABLE IF NOT EXISTS hexcodes (
    language   TEXT     NOT NULL,
    token      TEXT     NOT NULL,
    hexcode    TEXT     NOT NULL,
    is_common  BOOLEAN  NOT NULL DEFAULT FALSE,
    index_no   INTEGER  NOT NULL DEFAULT 0,
    graphemes  JSONB    NOT NULL DEFAULT '[]',
    PRIMARY KEY (language, token)
);
`

// Migrate ensures all required tables and indexes exist. It is idempotent and
// safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ddl := range []string{ddlSessionRecords, ddlMilestoneRecords, ddlHexcodes} {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
