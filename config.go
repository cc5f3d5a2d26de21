package quill

// Config holds configuration for the AccessControl engine.
type Config struct {
	// MaxBulkSize caps the number of accounts in one bulk request.
	// Zero means no limit. Defaults to 100.
	MaxBulkSize int `json:"max_bulk_size,omitempty"`

	// DisableEvents turns off the audit event log. Plugins still fire.
	DisableEvents bool `json:"disable_events,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxBulkSize: 100,
	}
}
