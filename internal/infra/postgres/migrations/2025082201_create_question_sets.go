package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createQuestionSetsSQL = `
CREATE TABLE IF NOT EXISTS question_sets (
    mode TEXT NOT NULL,
    key  TEXT NOT NULL,
    data JSONB NOT NULL,
    PRIMARY KEY (mode, key)
);

CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    selection_key TEXT NOT NULL,
    time_taken_seconds BIGINT NOT NULL,
    answers JSONB NOT NULL,
    score INT NOT NULL,
    max_score INT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS attempts_user_id_idx ON attempts (user_id, created_at DESC);
`

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createQuestionSetsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS attempts; DROP TABLE IF EXISTS question_sets`)
			return err
		},
	)
}
