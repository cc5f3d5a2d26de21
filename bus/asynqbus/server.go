package asynqbus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/xraph/quill/bus"
)

// Server consumes envelope tasks and delivers them to local processes.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// ServerConfig collects dependencies required to bootstrap the server.
type ServerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Queue       string
	Concurrency int
	Logger      *slog.Logger
}

// NewServer constructs a Server delivering into local.
func NewServer(cfg ServerConfig, local bus.Transport) *Server {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			cfg.Queue: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEnvelope, Handler(local, cfg.Logger))
	return &Server{server: srv, mux: mux, logger: cfg.Logger}
}

// Run processes tasks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s == nil {
		return errors.New("asynqbus: server not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Run(s.mux)
	}()
	select {
	case <-ctx.Done():
		s.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
