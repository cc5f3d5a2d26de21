// Package regsync keeps the permission registry in step with a blog's role
// store. After every membership change it pushes the affected account's
// complete tracked role set, so a lost or duplicated push is repaired by the
// next one.
package regsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/event"
	"github.com/xraph/quill/plugin"
	"github.com/xraph/quill/registry"
)

// DefaultRegistryID is the process ID pushes are addressed to.
const DefaultRegistryID = "registry"

// Compile-time interface checks.
var (
	_ plugin.Plugin        = (*Syncer)(nil)
	_ plugin.RoleGranted   = (*Syncer)(nil)
	_ plugin.RoleRevoked   = (*Syncer)(nil)
	_ plugin.RoleRenounced = (*Syncer)(nil)
	_ plugin.Shutdown      = (*Syncer)(nil)
)

// Source provides current role snapshots. *quill.Engine satisfies it.
type Source interface {
	Snapshot(account string) []string
	Accounts() []string
}

// Syncer pushes role snapshots to the registry process.
type Syncer struct {
	source     Source
	sender     bus.Sender
	registryID string
	logger     *slog.Logger
	metrics    *Metrics
	cron       *cron.Cron
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *Syncer) { s.logger = l } }

// WithRegistryID overrides the registry process ID.
func WithRegistryID(id string) Option { return func(s *Syncer) { s.registryID = id } }

// WithMetrics sets the metrics sink. Nil disables metrics.
func WithMetrics(m *Metrics) Option { return func(s *Syncer) { s.metrics = m } }

// New creates a Syncer reading from source and sending through sender.
func New(source Source, sender bus.Sender, opts ...Option) *Syncer {
	s := &Syncer{
		source:     source,
		sender:     sender,
		registryID: DefaultRegistryID,
		logger:     slog.Default(),
		cron:       cron.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSource sets the snapshot source. It exists for wiring where the
// source is built with the Syncer as one of its plugins.
func (s *Syncer) SetSource(src Source) { s.source = src }

// Name implements plugin.Plugin.
func (s *Syncer) Name() string { return "regsync" }

// OnRoleGranted pushes the grantee's snapshot.
func (s *Syncer) OnRoleGranted(ctx context.Context, e *event.Event) error {
	_ = s.Push(ctx, e.Account)
	return nil
}

// OnRoleRevoked pushes the revoked account's snapshot.
func (s *Syncer) OnRoleRevoked(ctx context.Context, e *event.Event) error {
	_ = s.Push(ctx, e.Account)
	return nil
}

// OnRoleRenounced pushes the renouncing account's snapshot.
func (s *Syncer) OnRoleRenounced(ctx context.Context, e *event.Event) error {
	_ = s.Push(ctx, e.Account)
	return nil
}

// OnShutdown stops the resync schedule.
func (s *Syncer) OnShutdown(_ context.Context) error {
	s.Stop()
	return nil
}

// Push sends the tracked snapshot of account: an update when it holds any
// tracked role, a removal otherwise. The error is returned for callers that
// care; hook callers ignore it.
func (s *Syncer) Push(ctx context.Context, account string) error {
	if account == "" || s.source == nil {
		return nil
	}
	roles := Tracked(s.source.Snapshot(account))

	var (
		action  string
		payload any
	)
	if len(roles) == 0 {
		action = registry.ActionRemoveWalletPermissions
		payload = registry.WalletRequest{Wallet: account}
	} else {
		action = registry.ActionUpdateWalletRoles
		payload = registry.RolesRequest{Wallet: account, Roles: roles}
	}

	err := s.sender.Send(ctx, s.registryID, action, payload)
	s.metrics.push(action, err)
	if err != nil {
		s.logger.Warn("registry sync failed",
			slog.String("blog_id", s.sender.ID()),
			slog.String("wallet", account),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("regsync: push %s: %w", account, err)
	}
	s.logger.Debug("registry sync pushed",
		slog.String("wallet", account),
		slog.String("action", action),
		slog.Any("roles", roles),
	)
	return nil
}

// ResyncAll pushes every account that holds a role. It returns the number of
// successful pushes and the joined push errors.
func (s *Syncer) ResyncAll(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, nil
	}
	s.metrics.resync()
	var (
		sent int
		errs []error
	)
	for _, account := range s.source.Accounts() {
		if err := s.Push(ctx, account); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	s.logger.Info("registry resync finished",
		slog.String("blog_id", s.sender.ID()),
		slog.Int("sent", sent),
		slog.Int("failed", len(errs)),
	)
	return sent, errors.Join(errs...)
}

// Schedule registers a periodic ResyncAll using a standard cron spec.
func (s *Syncer) Schedule(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		_, _ = s.ResyncAll(context.Background())
	})
	if err != nil {
		return fmt.Errorf("regsync: schedule %q: %w", spec, err)
	}
	return nil
}

// Start runs the resync schedule in the background.
func (s *Syncer) Start() { s.cron.Start() }

// Stop halts the resync schedule and waits for a running resync.
func (s *Syncer) Stop() { <-s.cron.Stop().Done() }

// Tracked filters roles down to the ones the registry indexes, keeping
// order.
func Tracked(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if registry.IsTracked(r) {
			out = append(out, r)
		}
	}
	return out
}
