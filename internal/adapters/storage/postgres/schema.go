package postgres

import (
	"context"
	"database/sql"
)

// schema es idempotente; lo aplica `findmypet-api migrate`.
// matches.pet_id tiene ON DELETE CASCADE como respaldo del borrado explícito en DeleteCascade.
const schema = `
CREATE TABLE IF NOT EXISTS lost_pets (
	id                      TEXT PRIMARY KEY,
	owner_user_id           TEXT NOT NULL,
	name                    TEXT NOT NULL,
	species                 TEXT NOT NULL CHECK (species IN ('dog', 'cat')),
	breed                   TEXT NOT NULL DEFAULT '',
	age                     INTEGER NULL CHECK (age BETWEEN 0 AND 30),
	description             TEXT NOT NULL,
	images                  JSONB NOT NULL DEFAULT '[]'::jsonb,
	last_seen_location      TEXT NOT NULL,
	last_seen_lat           DOUBLE PRECISION NULL,
	last_seen_lng           DOUBLE PRECISION NULL,
	last_seen_at            TIMESTAMPTZ NOT NULL,
	status                  TEXT NOT NULL CHECK (status IN ('searching', 'found', 'cancelled')),
	search_radius_km        DOUBLE PRECISION NOT NULL CHECK (search_radius_km > 0),
	search_sources          JSONB NOT NULL DEFAULT '[]'::jsonb,
	status_notes            TEXT NOT NULL DEFAULT '',
	found_at                TIMESTAMPTZ NULL,
	last_confirmed_match_at TIMESTAMPTZ NULL,
	confirmed_match_count   INTEGER NOT NULL DEFAULT 0 CHECK (confirmed_match_count >= 0),
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS lost_pets_owner_created_idx ON lost_pets (owner_user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS matches (
	id              TEXT PRIMARY KEY,
	pet_id          TEXT NOT NULL REFERENCES lost_pets (id) ON DELETE CASCADE,
	source_platform TEXT NOT NULL,
	confidence      DOUBLE PRECISION NOT NULL CHECK (confidence BETWEEN 0 AND 100),
	scraped_at      TIMESTAMPTZ NOT NULL,
	post_url        TEXT NOT NULL DEFAULT '',
	image_url       TEXT NOT NULL DEFAULT '',
	snippet         TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'rejected')),
	reviewed_at     TIMESTAMPTZ NULL,
	reviewed_by     TEXT NOT NULL DEFAULT '',
	review_notes    TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS matches_ranked_idx ON matches (pet_id, confidence DESC, scraped_at DESC);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
