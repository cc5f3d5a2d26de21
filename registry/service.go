package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/quill"
	"github.com/xraph/quill/id"
)

// Registry is the PermissionRegistry service run by the registry process.
// Writes always name the blog explicitly; deriving the blog from the
// authenticated sender is the caller's responsibility.
type Registry struct {
	store    Store
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
	version  string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(r *Registry) { r.logger = l } }

// WithClock overrides the time source used for LastUpdated.
func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

// WithVersion overrides the version reported in Stats.
func WithVersion(v string) Option { return func(r *Registry) { r.version = v } }

// New creates a Registry over store.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		validate: newValidator(),
		logger:   slog.Default(),
		now:      time.Now,
		version:  Version,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying store.
func (r *Registry) Store() Store { return r.store }

type registration struct {
	Wallet string   `validate:"required"`
	BlogID string   `validate:"required"`
	Roles  []string `validate:"required,min=1,dive,tracked"`
}

type pair struct {
	Wallet string `validate:"required"`
	BlogID string `validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("tracked", func(fl validator.FieldLevel) bool {
		return IsTracked(fl.Field().String())
	})
	return v
}

func (r *Registry) check(x any) error {
	err := r.validate.Struct(x)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", quill.ErrInternal, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "tracked":
			msgs = append(msgs, fmt.Sprintf("role %q is not tracked by the registry", fe.Value()))
		case "min":
			msgs = append(msgs, "roles must not be empty")
		default:
			msgs = append(msgs, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", quill.ErrValidation, strings.Join(msgs, "; "))
}

// ──────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────

// Register overwrites the roles of wallet on blogID. Roles are deduplicated
// and sorted; re-registering the same roles only refreshes LastUpdated.
func (r *Registry) Register(ctx context.Context, wallet, blogID string, roles []string) error {
	if err := r.check(&registration{Wallet: wallet, BlogID: blogID, Roles: roles}); err != nil {
		return err
	}
	normalized := slices.Clone(roles)
	slices.Sort(normalized)
	normalized = slices.Compact(normalized)

	e := &Entry{
		ID:          id.NewEntryID(),
		Wallet:      wallet,
		BlogID:      blogID,
		Roles:       normalized,
		LastUpdated: r.now().UTC(),
	}
	if err := r.store.Put(ctx, e); err != nil {
		return fmt.Errorf("quill: registry put: %w", err)
	}
	r.logger.Debug("registry entry registered",
		slog.String("wallet", wallet),
		slog.String("blog_id", blogID),
		slog.Any("roles", normalized),
	)
	return nil
}

// Remove deletes the pair. Removing an absent pair succeeds.
func (r *Registry) Remove(ctx context.Context, wallet, blogID string) error {
	if err := r.check(&pair{Wallet: wallet, BlogID: blogID}); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, wallet, blogID); err != nil {
		return fmt.Errorf("quill: registry delete: %w", err)
	}
	r.logger.Debug("registry entry removed",
		slog.String("wallet", wallet),
		slog.String("blog_id", blogID),
	)
	return nil
}

// Update behaves as Remove when roles is empty and as Register otherwise.
func (r *Registry) Update(ctx context.Context, wallet, blogID string, roles []string) error {
	if len(roles) == 0 {
		return r.Remove(ctx, wallet, blogID)
	}
	return r.Register(ctx, wallet, blogID, roles)
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// WalletBlogs returns every blog wallet has roles on.
func (r *Registry) WalletBlogs(ctx context.Context, wallet string) ([]BlogPermissionEntry, error) {
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet is required", quill.ErrValidation)
	}
	entries, err := r.store.WalletBlogs(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("quill: registry wallet blogs: %w", err)
	}
	out := make([]BlogPermissionEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, BlogPermissionEntry{BlogID: e.BlogID, Roles: e.Roles, LastUpdated: e.LastUpdated})
	}
	return out, nil
}

// BlogWallets returns every wallet with roles on blogID.
func (r *Registry) BlogWallets(ctx context.Context, blogID string) ([]WalletPermissionEntry, error) {
	if blogID == "" {
		return nil, fmt.Errorf("%w: blog_id is required", quill.ErrValidation)
	}
	entries, err := r.store.BlogWallets(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("quill: registry blog wallets: %w", err)
	}
	out := make([]WalletPermissionEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, WalletPermissionEntry{Wallet: e.Wallet, Roles: e.Roles, LastUpdated: e.LastUpdated})
	}
	return out, nil
}

// HasRole reports whether wallet holds role on blogID. An absent pair is
// false, not an error.
func (r *Registry) HasRole(ctx context.Context, wallet, blogID, role string) (bool, error) {
	if err := r.check(&pair{Wallet: wallet, BlogID: blogID}); err != nil {
		return false, err
	}
	if role == "" {
		return false, fmt.Errorf("%w: role is required", quill.ErrValidation)
	}
	e, err := r.store.Lookup(ctx, wallet, blogID)
	if errors.Is(err, ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("quill: registry lookup: %w", err)
	}
	return e.HasRole(role), nil
}

// Stats scans the whole index.
func (r *Registry) Stats(ctx context.Context) (Stats, error) {
	st, err := r.store.Scan(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("quill: registry scan: %w", err)
	}
	st.Version = r.version
	return st, nil
}

// Info returns the registry name, author and current stats.
func (r *Registry) Info(ctx context.Context) (Info, error) {
	st, err := r.Stats(ctx)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: Name, Author: Author, Stats: st}, nil
}

// AdminBlogs returns the blogs on which wallet holds the root role.
func (r *Registry) AdminBlogs(ctx context.Context, wallet string) ([]BlogPermissionEntry, error) {
	return r.filterBlogs(ctx, wallet, func(roles []string) bool {
		return slices.Contains(roles, quill.RootRole)
	})
}

// EditableBlogs returns the blogs on which wallet holds root or editor.
func (r *Registry) EditableBlogs(ctx context.Context, wallet string) ([]BlogPermissionEntry, error) {
	return r.filterBlogs(ctx, wallet, func(roles []string) bool {
		return slices.Contains(roles, quill.RootRole) || slices.Contains(roles, quill.EditorRole)
	})
}

func (r *Registry) filterBlogs(ctx context.Context, wallet string, keep func([]string) bool) ([]BlogPermissionEntry, error) {
	all, err := r.WalletBlogs(ctx, wallet)
	if err != nil {
		return nil, err
	}
	out := make([]BlogPermissionEntry, 0, len(all))
	for _, e := range all {
		if keep(e.Roles) {
			out = append(out, e)
		}
	}
	return out, nil
}
