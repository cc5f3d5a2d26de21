// Command quill runs blog AccessControl processes and the permission
// registry as a Forge application.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xraph/forge"

	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/bus/asynqbus"
	quillext "github.com/xraph/quill/extension"
	"github.com/xraph/quill/regsync"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := cfg.newLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("quill exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	local := bus.NewLocal()

	opts := []quillext.ExtOption{
		quillext.WithConfig(quillext.Config{
			RegistryID:     cfg.RegistryID,
			MaxBulkSize:    cfg.MaxBulkSize,
			MailboxSize:    cfg.MailboxSize,
			ResyncSchedule: cfg.ResyncSchedule,
			CacheTTL:       cfg.CacheTTL,
			Blogs:          cfg.Blogs,
		}),
		quillext.WithLocal(local),
		quillext.WithLogger(logger),
		quillext.WithMetrics(regsync.NewMetrics(prometheus.DefaultRegisterer)),
	}

	if cfg.RedisAddr != "" {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

		health := asynqbus.NewHealthChecker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer health.Close()
		if err := health.Ping(ctx); err != nil {
			return err
		}

		client := asynq.NewClient(redisOpts)
		defer client.Close()
		opts = append(opts, quillext.WithTransport(asynqbus.NewTransport(client, cfg.Queue)))

		worker := asynqbus.NewServer(asynqbus.ServerConfig{
			RedisOpts:   redisOpts,
			Queue:       cfg.Queue,
			Concurrency: cfg.Concurrency,
			Logger:      logger,
		}, local)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("envelope worker stopped", slog.String("error", err.Error()))
			}
		}()
		logger.Info("envelope worker started", slog.String("redis", cfg.RedisAddr), slog.String("queue", cfg.Queue))
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, logger)
	}

	app := forge.New(
		forge.WithExtensions(quillext.New(opts...)),
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Stop(shutdownCtx)
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server", slog.String("error", err.Error()))
	}
}
