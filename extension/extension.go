// Package extension provides a Forge extension entry point for quill.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/quill"
	"github.com/xraph/quill/api"
	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/cache"
	"github.com/xraph/quill/process"
	"github.com/xraph/quill/registry"
	"github.com/xraph/quill/regsync"
	"github.com/xraph/quill/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "quill"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Per-blog role-based access control with a shared permission registry"

// ExtensionVersion is the semantic version.
const ExtensionVersion = registry.Version

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts quill as a Forge extension.
type Extension struct {
	config     Config
	store      store.Store
	local      *bus.Local
	transport  bus.Transport
	host       *process.Host
	apiHandler *api.API
	metrics    *regsync.Metrics
	logger     *slog.Logger
}

// New creates a quill Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Host returns the process host.
func (e *Extension) Host() *process.Host { return e.host }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It builds the registry and the
// process host, registers the host in the DI container, and optionally
// registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*process.Host, error) {
		return e.host, nil
	}); err != nil {
		return fmt.Errorf("quill: register host in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	if e.store == nil {
		s, err := e.resolveStore(fapp)
		if err != nil {
			return err
		}
		e.store = s
	}
	if e.config.CacheTTL > 0 {
		e.store = cache.Wrap(e.store, cache.WithTTL(e.config.CacheTTL))
	}

	local := e.local
	if local == nil {
		local = bus.NewLocal()
	}

	reg := registry.New(e.store, registry.WithLogger(logger))
	e.host = process.NewHost(local, reg, process.HostConfig{
		RegistryID:  e.config.RegistryID,
		MailboxSize: e.config.MailboxSize,
		Logger:      logger,
		Blog: process.BlogConfig{
			Engine:      &quill.Config{MaxBulkSize: e.config.MaxBulkSize},
			Transport:   e.transport,
			ResyncSpec:  e.config.ResyncSchedule,
			MailboxSize: e.config.MailboxSize,
			Metrics:     e.metrics,
		},
	})

	e.apiHandler = api.New(e.host, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("quill: register routes: %w", err)
		}
	}

	return nil
}

// resolveStore prefers a store.Store from the container, then a grove.DB
// paired with the configured driver, then memory.
func (e *Extension) resolveStore(fapp forge.App) (store.Store, error) {
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		return s, nil
	}
	if e.config.Driver == "" || e.config.Driver == store.DriverMemory {
		return store.Open(store.DriverMemory, nil)
	}
	db, err := forge.Inject[*grove.DB](fapp.Container())
	if err != nil {
		return nil, fmt.Errorf("quill: driver %q needs a grove.DB in the container: %w", e.config.Driver, err)
	}
	return store.Open(e.config.Driver, db)
}

// Start runs migrations if enabled, starts the registry process and spawns
// the configured blogs.
func (e *Extension) Start(ctx context.Context) error {
	if e.host == nil {
		return errors.New("quill: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return fmt.Errorf("quill: migration failed: %w", err)
		}
	}

	// Processes outlive the start context.
	e.host.Start(context.WithoutCancel(ctx))
	for _, blogID := range e.config.Blogs {
		if _, err := e.host.Spawn(blogID); err != nil {
			return fmt.Errorf("quill: spawn blog %s: %w", blogID, err)
		}
	}
	return nil
}

// Stop gracefully shuts down every process and closes the store.
func (e *Extension) Stop(ctx context.Context) error {
	if e.host == nil {
		return nil
	}
	err := e.host.Stop(ctx)
	return errors.Join(err, e.store.Close())
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.host == nil {
		return errors.New("quill: extension not initialized")
	}
	if e.store == nil {
		return errors.New("quill: no store configured")
	}
	return e.store.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all quill API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
