package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

// seq records first submission order; the score upsert never rewrites it.
func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `ALTER TABLE quiz_participants ADD COLUMN IF NOT EXISTS seq BIGINT GENERATED ALWAYS AS IDENTITY`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `ALTER TABLE quiz_participants DROP COLUMN IF EXISTS seq`)
			return err
		},
	)
}
