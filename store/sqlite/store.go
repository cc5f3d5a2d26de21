// Package sqlite provides a SQLite implementation of the registry store
// using grove ORM with Go-based migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/quill/registry"
)

// Compile-time interface check.
var _ registry.Store = (*Store)(nil)

// Store is a SQLite implementation of the registry store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("quill/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("quill/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ──────────────────────────────────────────────────
// Registry operations
// ──────────────────────────────────────────────────

func (s *Store) Put(ctx context.Context, e *registry.Entry) error {
	if len(e.Roles) == 0 {
		return registry.ErrEmptyRoles
	}
	m, err := entryToModel(e)
	if err != nil {
		return fmt.Errorf("quill: put entry: %w", err)
	}
	_, err = s.sdb.NewInsert(m).
		OnConflict("(wallet, blog_id) DO UPDATE SET roles = excluded.roles, last_updated = excluded.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("quill: put entry: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, wallet, blogID string) error {
	_, err := s.sdb.NewDelete((*entryModel)(nil)).
		Where("wallet = ?", wallet).
		Where("blog_id = ?", blogID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("quill: delete entry: %w", err)
	}
	return nil
}

func (s *Store) Lookup(ctx context.Context, wallet, blogID string) (*registry.Entry, error) {
	m := new(entryModel)
	err := s.sdb.NewSelect(m).
		Where("wallet = ?", wallet).
		Where("blog_id = ?", blogID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%s on %s: %w", wallet, blogID, registry.ErrEntryNotFound)
		}
		return nil, fmt.Errorf("quill: lookup entry: %w", err)
	}
	e, err := entryFromModel(m)
	if err != nil {
		return nil, fmt.Errorf("quill: lookup entry: %w", err)
	}
	return e, nil
}

func (s *Store) WalletBlogs(ctx context.Context, wallet string) ([]*registry.Entry, error) {
	var models []entryModel
	err := s.sdb.NewSelect(&models).
		Where("wallet = ?", wallet).
		OrderExpr("blog_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("quill: wallet blogs: %w", err)
	}
	return entriesFromModels(models)
}

func (s *Store) BlogWallets(ctx context.Context, blogID string) ([]*registry.Entry, error) {
	var models []entryModel
	err := s.sdb.NewSelect(&models).
		Where("blog_id = ?", blogID).
		OrderExpr("wallet ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("quill: blog wallets: %w", err)
	}
	return entriesFromModels(models)
}

func (s *Store) Scan(ctx context.Context) (registry.Stats, error) {
	var models []entryModel
	if err := s.sdb.NewSelect(&models).Scan(ctx); err != nil {
		return registry.Stats{}, fmt.Errorf("quill: scan entries: %w", err)
	}
	wallets := make(map[string]struct{})
	blogs := make(map[string]struct{})
	for i := range models {
		wallets[models[i].Wallet] = struct{}{}
		blogs[models[i].BlogID] = struct{}{}
	}
	return registry.Stats{Wallets: len(wallets), Blogs: len(blogs), Pairs: len(models)}, nil
}

func entriesFromModels(models []entryModel) ([]*registry.Entry, error) {
	result := make([]*registry.Entry, len(models))
	for i := range models {
		e, err := entryFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}
