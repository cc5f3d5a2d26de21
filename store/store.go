// Package store defines the aggregate persistence interface and selects a
// backend by driver name. Backends: Memory, SQLite, PostgreSQL and MongoDB.
package store

import (
	"errors"
	"fmt"

	"github.com/xraph/grove"

	"github.com/xraph/quill/registry"
	"github.com/xraph/quill/store/memory"
	"github.com/xraph/quill/store/mongo"
	"github.com/xraph/quill/store/postgres"
	"github.com/xraph/quill/store/sqlite"
)

// Store is the aggregate persistence interface. A single backend implements
// every subsystem store.
type Store interface {
	registry.Store
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("quill: unknown store driver")

// Open returns the backend for driver. The memory driver ignores db; every
// other driver requires it.
func Open(driver string, db *grove.DB) (Store, error) {
	if driver == "" || driver == DriverMemory {
		return memory.New(), nil
	}
	if db == nil {
		return nil, fmt.Errorf("quill: store driver %q requires a database", driver)
	}
	switch driver {
	case DriverSQLite:
		return sqlite.New(db), nil
	case DriverPostgres:
		return postgres.New(db), nil
	case DriverMongo:
		return mongo.New(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
