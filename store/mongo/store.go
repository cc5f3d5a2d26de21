// Package mongo provides a MongoDB implementation of the registry store
// using grove's mongo driver.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/quill/registry"
)

// Collection name constants.
const (
	colEntries = "quill_registry_entries"
)

// Compile-time interface check.
var _ registry.Store = (*Store)(nil)

// Store is a MongoDB implementation of the registry store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for the registry collection.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("quill/mongo: migrate %s indexes: %w", col, err)
		}
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colEntries: {
			{
				Keys:    bson.D{{Key: "wallet", Value: 1}, {Key: "blog_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "blog_id", Value: 1}, {Key: "wallet", Value: 1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Registry operations
// ──────────────────────────────────────────────────

// Put overwrites the existing document for the pair in place, keeping its
// _id, or inserts a new one.
func (s *Store) Put(ctx context.Context, e *registry.Entry) error {
	if len(e.Roles) == 0 {
		return registry.ErrEmptyRoles
	}
	m := entryToModel(e)

	var existing entryModel
	err := s.mdb.NewFind(&existing).
		Filter(bson.M{"wallet": e.Wallet, "blog_id": e.BlogID}).
		Scan(ctx)
	switch {
	case err == nil:
		m.ID = existing.ID
		res, err := s.mdb.NewUpdate(m).
			Filter(bson.M{"_id": m.ID}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("quill: put entry: %w", err)
		}
		if res.MatchedCount() == 0 {
			return fmt.Errorf("quill: put entry %s on %s: document vanished", e.Wallet, e.BlogID)
		}
	case isNoDocuments(err):
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("quill: put entry: %w", err)
		}
	default:
		return fmt.Errorf("quill: put entry: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, wallet, blogID string) error {
	_, err := s.mdb.NewDelete((*entryModel)(nil)).
		Filter(bson.M{"wallet": wallet, "blog_id": blogID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("quill: delete entry: %w", err)
	}
	return nil
}

func (s *Store) Lookup(ctx context.Context, wallet, blogID string) (*registry.Entry, error) {
	var m entryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"wallet": wallet, "blog_id": blogID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("%s on %s: %w", wallet, blogID, registry.ErrEntryNotFound)
		}
		return nil, fmt.Errorf("quill: lookup entry: %w", err)
	}
	return entryFromModel(&m)
}

func (s *Store) WalletBlogs(ctx context.Context, wallet string) ([]*registry.Entry, error) {
	var models []entryModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"wallet": wallet}).
		Sort(bson.D{{Key: "blog_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("quill: wallet blogs: %w", err)
	}
	return entriesFromModels(models)
}

func (s *Store) BlogWallets(ctx context.Context, blogID string) ([]*registry.Entry, error) {
	var models []entryModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"blog_id": blogID}).
		Sort(bson.D{{Key: "wallet", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("quill: blog wallets: %w", err)
	}
	return entriesFromModels(models)
}

func (s *Store) Scan(ctx context.Context) (registry.Stats, error) {
	var models []entryModel
	if err := s.mdb.NewFind(&models).Filter(bson.M{}).Scan(ctx); err != nil {
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
