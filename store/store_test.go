package store

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/grove"

	"github.com/xraph/quill/store/memory"
)

func TestOpenMemory(t *testing.T) {
	for _, driver := range []string{"", DriverMemory} {
		s, err := Open(driver, nil)
		if err != nil {
			t.Fatalf("Open(%q): %v", driver, err)
		}
		if _, ok := s.(*memory.Store); !ok {
			t.Fatalf("Open(%q) returned %T", driver, s)
		}
		if err := s.Ping(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOpenRequiresDB(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres, DriverMongo} {
		if _, err := Open(driver, nil); err == nil {
			t.Fatalf("expected error for %q without a database", driver)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("cassandra", new(grove.DB))
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}
