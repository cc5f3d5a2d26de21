package postgres

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/quill/id"
	"github.com/xraph/quill/registry"
)

type entryModel struct {
	grove.BaseModel `grove:"table:quill_registry_entries"`
	ID              string    `grove:"id,pk"`
	Wallet          string    `grove:"wallet,notnull"`
	BlogID          string    `grove:"blog_id,notnull"`
	Roles           []string  `grove:"roles,type:jsonb"`
	LastUpdated     time.Time `grove:"last_updated,notnull"`
}

func entryToModel(e *registry.Entry) *entryModel {
	return &entryModel{
		ID:          e.ID.String(),
		Wallet:      e.Wallet,
		BlogID:      e.BlogID,
		Roles:       e.Roles,
		LastUpdated: e.LastUpdated,
	}
}

func entryFromModel(m *entryModel) (*registry.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse entry id: %w", err)
	}
	return &registry.Entry{
		ID:          entryID,
		Wallet:      m.Wallet,
		BlogID:      m.BlogID,
		Roles:       m.Roles,
		LastUpdated: m.LastUpdated,
	}, nil
}
