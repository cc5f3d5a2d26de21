package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Compile-time interface check.
var _ Transport = (*Local)(nil)

// Local routes envelopes between processes in the same address space.
type Local struct {
	mu        sync.RWMutex
	mailboxes map[string]Mailbox
}

// NewLocal creates an empty in-process router.
func NewLocal() *Local {
	return &Local{mailboxes: make(map[string]Mailbox)}
}

// Register makes mb reachable as processID, replacing any previous mailbox.
func (l *Local) Register(processID string, mb Mailbox) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mailboxes[processID] = mb
}

// Unregister removes processID.
func (l *Local) Unregister(processID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.mailboxes, processID)
}

// Endpoint returns a sender that stamps processID on every envelope.
func (l *Local) Endpoint(processID string) *Endpoint {
	return NewEndpoint(processID, l)
}

// Deliver enqueues env on its destination mailbox.
func (l *Local) Deliver(_ context.Context, env *Envelope) error {
	mb, err := l.lookup(env.To)
	if err != nil {
		return err
	}
	return mb.Deliver(env)
}

// Request enqueues env and waits for the destination's reply.
func (l *Local) Request(ctx context.Context, env *Envelope) (json.RawMessage, error) {
	mb, err := l.lookup(env.To)
	if err != nil {
		return nil, err
	}
	return mb.Ask(ctx, env)
}

func (l *Local) lookup(processID string) (Mailbox, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	mb, ok := l.mailboxes[processID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcess, processID)
	}
	return mb, nil
}
