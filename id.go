package quill

import "github.com/xraph/quill/id"

// ID is the identifier type for Quill entities.
type ID = id.ID
