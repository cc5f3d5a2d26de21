// Package actor runs a process: a single goroutine that drains a bounded
// mailbox and handles one envelope at a time to completion.
package actor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/quill/bus"
)

var processTracer = otel.Tracer("quill/actor")

var (
	// ErrMailboxFull is returned when an envelope is offered to a full
	// mailbox. The envelope is dropped.
	ErrMailboxFull = errors.New("actor: mailbox full")

	// ErrStopped is returned once the process has stopped running.
	ErrStopped = errors.New("actor: process stopped")

	// ErrNoReply is returned by Ask when the handler produced no reply.
	ErrNoReply = errors.New("actor: no reply")
)

// Compile-time interface check.
var _ bus.Mailbox = (*Process)(nil)

// Handler handles one envelope and returns the encoded reply. Handlers run
// on the process goroutine only.
type Handler interface {
	Handle(ctx context.Context, env *bus.Envelope) json.RawMessage
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, env *bus.Envelope) json.RawMessage

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, env *bus.Envelope) json.RawMessage {
	return f(ctx, env)
}

type job struct {
	env   *bus.Envelope
	reply chan json.RawMessage
}

// Process is a single-threaded actor.
type Process struct {
	id      string
	handler Handler
	mailbox chan job
	logger  *slog.Logger
	tracer  trace.Tracer

	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Process.
type Option func(*Process)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(p *Process) { p.logger = l } }

// WithMailboxSize sets the mailbox capacity. Defaults to 256.
func WithMailboxSize(n int) Option {
	return func(p *Process) {
		if n > 0 {
			p.mailbox = make(chan job, n)
		}
	}
}

// WithTracer overrides the tracer used for per-envelope spans.
func WithTracer(t trace.Tracer) Option { return func(p *Process) { p.tracer = t } }

// New creates a process. It handles nothing until Run is called.
func New(processID string, h Handler, opts ...Option) *Process {
	p := &Process{
		id:      processID,
		handler: h,
		mailbox: make(chan job, 256),
		logger:  slog.Default(),
		tracer:  processTracer,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the process identity.
func (p *Process) ID() string { return p.id }

// Pending returns the number of queued envelopes.
func (p *Process) Pending() int { return len(p.mailbox) }

// Deliver enqueues env without blocking.
func (p *Process) Deliver(env *bus.Envelope) error {
	return p.offer(job{env: env})
}

// Ask enqueues env and waits for the reply, ctx cancellation, or the
// process stopping.
func (p *Process) Ask(ctx context.Context, env *bus.Envelope) (json.RawMessage, error) {
	reply := make(chan json.RawMessage, 1)
	if err := p.offer(job{env: env, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case r := <-reply:
		if r == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoReply, env.Action)
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrStopped
	}
}

func (p *Process) offer(j job) error {
	select {
	case <-p.done:
		return ErrStopped
	default:
	}
	select {
	case p.mailbox <- j:
		return nil
	default:
		p.logger.Warn("mailbox full, dropping envelope",
			slog.String("process", p.id),
			slog.String("action", j.env.Action),
			slog.String("from", j.env.From),
		)
		return fmt.Errorf("%w: %s", ErrMailboxFull, p.id)
	}
}

// Run handles envelopes until ctx is done or Stop is called. Queued
// envelopes left at that point are discarded.
func (p *Process) Run(ctx context.Context) error {
	defer p.Stop()
	p.logger.Debug("process started", slog.String("process", p.id))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case j := <-p.mailbox:
			r := p.handle(ctx, j.env)
			if j.reply != nil {
				j.reply <- r
			}
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (p *Process) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
}

// Done is closed once the process has stopped.
func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) handle(ctx context.Context, env *bus.Envelope) (reply json.RawMessage) {
	ctx, span := p.tracer.Start(ctx, env.Action,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("quill.process", p.id),
			attribute.String("quill.from", env.From),
			attribute.String("quill.envelope_id", env.ID.String()),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "handler panic")
			p.logger.Error("handler panic",
				slog.String("process", p.id),
				slog.String("action", env.Action),
				slog.Any("panic", r),
			)
			reply = nil
		}
	}()

	return p.handler.Handle(ctx, env)
}
