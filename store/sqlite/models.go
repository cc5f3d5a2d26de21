package sqlite

import (
	"encoding/json"
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
	Roles           string    `grove:"roles,notnull"` // JSON text
	LastUpdated     time.Time `grove:"last_updated,notnull"`
}

func entryToModel(e *registry.Entry) (*entryModel, error) {
	roles, err := json.Marshal(e.Roles)
	if err != nil {
		return nil, fmt.Errorf("marshal entry roles: %w", err)
	}
	return &entryModel{
		ID:          e.ID.String(),
		Wallet:      e.Wallet,
		BlogID:      e.BlogID,
		Roles:       string(roles),
		LastUpdated: e.LastUpdated,
	}, nil
}

func entryFromModel(m *entryModel) (*registry.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse entry id: %w", err)
	}
	var roles []string
	if err := json.Unmarshal([]byte(m.Roles), &roles); err != nil {
		return nil, fmt.Errorf("unmarshal entry roles: %w", err)
	}
	return &registry.Entry{
		ID:          entryID,
		Wallet:      m.Wallet,
		BlogID:      m.BlogID,
		Roles:       roles,
		LastUpdated: m.LastUpdated,
	}, nil
}
