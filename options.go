package quill

import (
	"log/slog"
	"time"

	"github.com/xraph/quill/event"
	"github.com/xraph/quill/plugin"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithEventLog sets the audit log the engine appends to.
func WithEventLog(l *event.Log) Option { return func(e *Engine) { e.events = l } }

// WithPlugin registers a plugin with the engine. Plugins are registered
// after every option has run, so they share the final logger.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) { e.extensions = append(e.extensions, x) }
}
