package extension

import "time"

// Config holds the quill extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.quill" or "quill" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Driver selects the registry store when a grove.DB is available in the
	// DI container: sqlite, postgres or mongo. Empty means memory.
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// RegistryID is the process id of the permission registry.
	RegistryID string `json:"registry_id" mapstructure:"registry_id" yaml:"registry_id"`

	// MaxBulkSize caps bulk grant and revoke requests per blog. Zero means
	// no limit; DefaultConfig sets 100.
	MaxBulkSize int `json:"max_bulk_size" mapstructure:"max_bulk_size" yaml:"max_bulk_size"`

	// MailboxSize is the per-process mailbox capacity.
	MailboxSize int `json:"mailbox_size" mapstructure:"mailbox_size" yaml:"mailbox_size"`

	// ResyncSchedule is a cron spec for periodic full registry resyncs.
	// Empty disables the schedule.
	ResyncSchedule string `json:"resync_schedule" mapstructure:"resync_schedule" yaml:"resync_schedule"`

	// CacheTTL enables a read cache over registry index lookups when
	// positive.
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl" yaml:"cache_ttl"`

	// Blogs are spawned on start.
	Blogs []string `json:"blogs" mapstructure:"blogs" yaml:"blogs"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RegistryID:  "registry",
		MaxBulkSize: 100,
		MailboxSize: 256,
	}
}
