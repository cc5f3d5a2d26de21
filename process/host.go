package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/xraph/quill"
	"github.com/xraph/quill/actor"
	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/registry"
	"github.com/xraph/quill/regsync"
)

var (
	// ErrHostNotStarted is returned when spawning before Start or after Stop.
	ErrHostNotStarted = errors.New("process: host is not running")

	// ErrReservedID is returned when a blog would shadow the registry process.
	ErrReservedID = fmt.Errorf("%w: process id is reserved", quill.ErrValidation)
)

// HostConfig configures a Host.
type HostConfig struct {
	// RegistryID is the process id of the registry. Defaults to
	// regsync.DefaultRegistryID.
	RegistryID string

	// Blog is the template every spawned blog is built from. Its
	// RegistryID is overwritten with the host's.
	Blog BlogConfig

	MailboxSize int
	Logger      *slog.Logger
}

// Host runs the registry process and any number of blog processes on one
// local bus.
type Host struct {
	local    *bus.Local
	registry *registry.Registry
	cfg      HostConfig
	logger   *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	regProc *actor.Process
	blogs   map[string]*Blog
}

// NewHost creates a host. Nothing runs until Start.
func NewHost(local *bus.Local, reg *registry.Registry, cfg HostConfig) *Host {
	if cfg.RegistryID == "" {
		cfg.RegistryID = regsync.DefaultRegistryID
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Blog.RegistryID = cfg.RegistryID
	if cfg.Blog.Logger == nil {
		cfg.Blog.Logger = cfg.Logger
	}
	return &Host{
		local:    local,
		registry: reg,
		cfg:      cfg,
		logger:   cfg.Logger,
		blogs:    make(map[string]*Blog),
	}
}

// Local returns the bus the host's processes are registered on.
func (h *Host) Local() *bus.Local { return h.local }

// Registry returns the registry served by the registry process.
func (h *Host) Registry() *registry.Registry { return h.registry }

// RegistryID returns the process id of the registry.
func (h *Host) RegistryID() string { return h.cfg.RegistryID }

// Start launches the registry process. Blog processes spawned later share
// ctx.
func (h *Host) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx != nil {
		return
	}
	h.ctx, h.cancel = context.WithCancel(ctx)
	h.regProc = NewRegistryProcess(h.cfg.RegistryID, h.registry, h.local, h.cfg.MailboxSize, h.logger)
	go h.run(h.regProc)
	h.logger.Info("registry process started", slog.String("process", h.cfg.RegistryID))
}

// Spawn returns the blog process for blogID, creating and starting it when
// it does not exist yet.
func (h *Host) Spawn(blogID string) (*Blog, error) {
	if blogID == "" {
		return nil, fmt.Errorf("%w: blog id is required", quill.ErrValidation)
	}
	if blogID == h.cfg.RegistryID {
		return nil, fmt.Errorf("%w: %q", ErrReservedID, blogID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx == nil || h.ctx.Err() != nil {
		return nil, ErrHostNotStarted
	}
	if b, ok := h.blogs[blogID]; ok {
		return b, nil
	}
	b, err := NewBlog(blogID, h.local, h.cfg.Blog)
	if err != nil {
		return nil, err
	}
	h.blogs[blogID] = b
	go h.run(b.Process)
	h.logger.Info("blog process started", slog.String("blog_id", blogID))
	return b, nil
}

// Discard stops and removes blogID if its engine was never initialized.
// It reports whether the blog was removed.
func (h *Host) Discard(ctx context.Context, blogID string) bool {
	h.mu.Lock()
	b, ok := h.blogs[blogID]
	if !ok || b.Engine.IsInitialized() {
		h.mu.Unlock()
		return false
	}
	delete(h.blogs, blogID)
	h.local.Unregister(blogID)
	h.mu.Unlock()

	if err := b.Engine.Stop(ctx); err != nil {
		h.logger.Warn("blog shutdown failed", slog.String("blog_id", blogID), slog.String("error", err.Error()))
	}
	b.Process.Stop()
	h.logger.Info("blog process discarded", slog.String("blog_id", blogID))
	return true
}

// Blog returns the running blog process for blogID.
func (h *Host) Blog(blogID string) (*Blog, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.blogs[blogID]
	return b, ok
}

// Engine returns the AccessControl engine of blogID.
func (h *Host) Engine(blogID string) (*quill.Engine, bool) {
	b, ok := h.Blog(blogID)
	if !ok {
		return nil, false
	}
	return b.Engine, true
}

// Blogs returns the ids of every running blog, sorted.
func (h *Host) Blogs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.blogs))
	for blogID := range h.blogs {
		out = append(out, blogID)
	}
	slices.Sort(out)
	return out
}

// Stop stops every process and waits for them to exit or ctx to end.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	if h.cancel == nil {
		h.mu.Unlock()
		return nil
	}
	h.cancel()
	procs := make([]*actor.Process, 0, len(h.blogs)+1)
	var errs []error
	for blogID, b := range h.blogs {
		if err := b.Engine.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("blog %s: %w", blogID, err))
		}
		procs = append(procs, b.Process)
		h.local.Unregister(blogID)
	}
	procs = append(procs, h.regProc)
	h.local.Unregister(h.cfg.RegistryID)
	h.blogs = make(map[string]*Blog)
	h.mu.Unlock()

	for _, p := range procs {
		select {
		case <-p.Done():
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		}
	}
	return errors.Join(errs...)
}

func (h *Host) run(p *actor.Process) {
	if err := p.Run(h.ctx); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Error("process exited", slog.String("process", p.ID()), slog.String("error", err.Error()))
	}
}
