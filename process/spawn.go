package process

import (
	"fmt"
	"log/slog"

	"github.com/xraph/quill"
	"github.com/xraph/quill/actor"
	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/regsync"
	"github.com/xraph/quill/registry"
)

// BlogConfig configures a blog process built by NewBlog.
type BlogConfig struct {
	// Engine is the AccessControl configuration of the blog. Nil means
	// quill.DefaultConfig.
	Engine *quill.Config

	// Transport carries registry pushes. Defaults to the local bus the
	// process is registered on.
	Transport bus.Transport

	// RegistryID is the process the syncer pushes to.
	RegistryID string

	// ResyncSpec schedules a periodic full resync when set.
	ResyncSpec string

	MailboxSize int
	Metrics     *regsync.Metrics
	Logger      *slog.Logger
}

// Blog is a running blog process with its engine and syncer.
type Blog struct {
	Process *actor.Process
	Handler *BlogHandler
	Engine  *quill.Engine
	Syncer  *regsync.Syncer
}

// NewBlog builds the engine, syncer and handler for blogID and registers
// the process on local. The caller runs Blog.Process.
func NewBlog(blogID string, local *bus.Local, cfg BlogConfig) (*Blog, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("blog_id", blogID))

	transport := cfg.Transport
	if transport == nil {
		transport = local
	}
	engineCfg := quill.DefaultConfig()
	if cfg.Engine != nil {
		engineCfg = *cfg.Engine
	}
	registryID := cfg.RegistryID
	if registryID == "" {
		registryID = regsync.DefaultRegistryID
	}

	syncer := regsync.New(nil, bus.NewEndpoint(blogID, transport),
		regsync.WithLogger(logger),
		regsync.WithRegistryID(registryID),
		regsync.WithMetrics(cfg.Metrics),
	)
	engine, err := quill.NewEngine(
		quill.WithLogger(logger),
		quill.WithConfig(engineCfg),
		quill.WithPlugin(syncer),
	)
	if err != nil {
		return nil, fmt.Errorf("blog %s: %w", blogID, err)
	}
	syncer.SetSource(engine)

	if cfg.ResyncSpec != "" {
		if err := syncer.Schedule(cfg.ResyncSpec); err != nil {
			return nil, fmt.Errorf("blog %s: schedule resync: %w", blogID, err)
		}
		syncer.Start()
	}

	handler := NewBlogHandler(blogID, engine, syncer, logger)
	proc := actor.New(blogID, handler, processOpts(cfg.MailboxSize, logger)...)
	local.Register(blogID, proc)

	return &Blog{Process: proc, Handler: handler, Engine: engine, Syncer: syncer}, nil
}

// NewRegistryProcess builds the registry process and registers it on local
// as processID.
func NewRegistryProcess(processID string, reg *registry.Registry, local *bus.Local, mailboxSize int, logger *slog.Logger) *actor.Process {
	if logger == nil {
		logger = slog.Default()
	}
	proc := actor.New(processID, NewRegistryHandler(reg, logger), processOpts(mailboxSize, logger)...)
	local.Register(processID, proc)
	return proc
}

func processOpts(mailboxSize int, logger *slog.Logger) []actor.Option {
	opts := []actor.Option{actor.WithLogger(logger)}
	if mailboxSize > 0 {
		opts = append(opts, actor.WithMailboxSize(mailboxSize))
	}
	return opts
}
