// Package asynqbus carries envelopes between hosts as asynq tasks on Redis.
// Only fire-and-forget delivery is supported; requests stay in-process.
package asynqbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/xraph/quill/bus"
)

// TypeEnvelope is the asynq task type for a quill envelope.
const TypeEnvelope = "quill:envelope"

// DefaultQueue is the asynq queue envelopes are enqueued on.
const DefaultQueue = "quill"

// Compile-time interface check.
var _ bus.Transport = (*Transport)(nil)

// Enqueuer is the subset of *asynq.Client used by Transport.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Transport enqueues envelopes as asynq tasks.
type Transport struct {
	client Enqueuer
	queue  string
}

// NewTransport creates a transport over client. An empty queue means
// DefaultQueue.
func NewTransport(client Enqueuer, queue string) *Transport {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Transport{client: client, queue: queue}
}

// NewEnvelopeTask encodes env as an asynq task.
func NewEnvelopeTask(env *bus.Envelope) (*asynq.Task, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("asynqbus: encode envelope: %w", err)
	}
	return asynq.NewTask(TypeEnvelope, payload), nil
}

// Deliver enqueues env. Sync pushes are full snapshots, so a lost task is
// repaired by the next push and tasks are not retried.
func (t *Transport) Deliver(ctx context.Context, env *bus.Envelope) error {
	task, err := NewEnvelopeTask(env)
	if err != nil {
		return err
	}
	if _, err := t.client.EnqueueContext(ctx, task, asynq.Queue(t.queue), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("asynqbus: enqueue %s: %w", env.Action, err)
	}
	return nil
}

// Request is not supported over asynq.
func (t *Transport) Request(_ context.Context, env *bus.Envelope) (json.RawMessage, error) {
	return nil, fmt.Errorf("%w: %s", bus.ErrRequestUnsupported, env.Action)
}

// Handler returns an asynq handler that hands decoded envelopes to local.
//
// The envelope's From is taken from the task payload as enqueued, so sender
// identity is only as trustworthy as write access to the queue. Restrict the
// Redis instance to quill hosts.
func Handler(local bus.Transport, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var env bus.Envelope
		if err := json.Unmarshal(t.Payload(), &env); err != nil {
			return fmt.Errorf("asynqbus: decode envelope: %v: %w", err, asynq.SkipRetry)
		}
		if env.From == "" || env.To == "" || env.Action == "" {
			return fmt.Errorf("asynqbus: incomplete envelope %s: %w", env.ID, asynq.SkipRetry)
		}
		if err := local.Deliver(ctx, &env); err != nil {
			logger.Warn("asynqbus: delivery failed",
				slog.String("to", env.To),
				slog.String("action", env.Action),
				slog.String("error", err.Error()),
			)
			if errors.Is(err, bus.ErrUnknownProcess) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		return nil
	}
}
