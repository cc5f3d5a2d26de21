package asynqbus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthChecker probes the Redis instance backing the task queue.
type HealthChecker struct {
	client  *redis.Client
	timeout time.Duration
}

// NewHealthChecker creates a checker for the Redis server at addr.
func NewHealthChecker(addr, password string, db int) *HealthChecker {
	return &HealthChecker{
		client:  redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		timeout: 2 * time.Second,
	}
}

// Ping reports whether Redis answers within the checker timeout.
func (h *HealthChecker) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("asynqbus: redis unreachable: %w", err)
	}
	return nil
}

// QueueDepth returns the number of pending envelope tasks on queue.
func (h *HealthChecker) QueueDepth(ctx context.Context, queue string) (int64, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	n, err := h.client.LLen(ctx, "asynq:{"+queue+"}:pending").Result()
	if err != nil {
		return 0, fmt.Errorf("asynqbus: queue depth: %w", err)
	}
	return n, nil
}

// Close releases the Redis connection pool.
func (h *HealthChecker) Close() error { return h.client.Close() }
