package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the quill registry (PostgreSQL).
var Migrations = migrate.NewGroup("quill")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_registry_entries",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS quill_registry_entries (
    id              TEXT PRIMARY KEY,
    wallet          TEXT NOT NULL,
    blog_id         TEXT NOT NULL,
    roles           JSONB NOT NULL DEFAULT '[]',
    last_updated    TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(wallet, blog_id)
);

CREATE INDEX IF NOT EXISTS idx_quill_registry_wallet ON quill_registry_entries (wallet);
CREATE INDEX IF NOT EXISTS idx_quill_registry_blog ON quill_registry_entries (blog_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS quill_registry_entries`)
				return err
			},
		},
	)
}
