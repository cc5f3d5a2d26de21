package extension

import (
	"log/slog"

	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/regsync"
	"github.com/xraph/quill/store"
)

// ExtOption configures the quill Forge extension.
type ExtOption func(*Extension)

// WithStore sets the registry persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.store = s
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithLocal sets the in-process bus the host registers processes on. Pass
// the same bus to an asynqbus.Server to feed it remote envelopes.
func WithLocal(l *bus.Local) ExtOption {
	return func(e *Extension) {
		e.local = l
	}
}

// WithTransport sets the transport blogs push registry updates through.
// Defaults to the local bus.
func WithTransport(t bus.Transport) ExtOption {
	return func(e *Extension) {
		e.transport = t
	}
}

// WithMetrics sets the registry sync metrics shared by every blog.
func WithMetrics(m *regsync.Metrics) ExtOption {
	return func(e *Extension) {
		e.metrics = m
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
