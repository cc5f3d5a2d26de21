package bus

import (
	"context"
	"encoding/json"
)

// Compile-time interface check.
var _ Requester = (*Endpoint)(nil)

// Endpoint is the sending side of one process. Every envelope it creates
// carries the endpoint's identity in From.
type Endpoint struct {
	id        string
	transport Transport
}

// NewEndpoint binds processID to transport.
func NewEndpoint(processID string, transport Transport) *Endpoint {
	return &Endpoint{id: processID, transport: transport}
}

// ID returns the endpoint's process identity.
func (e *Endpoint) ID() string { return e.id }

// Send delivers a fire-and-forget message.
func (e *Endpoint) Send(ctx context.Context, to, action string, payload any) error {
	env, err := NewEnvelope(e.id, to, action, payload)
	if err != nil {
		return err
	}
	return e.transport.Deliver(ctx, env)
}

// Ask delivers a message and waits for the reply.
func (e *Endpoint) Ask(ctx context.Context, to, action string, payload any) (json.RawMessage, error) {
	env, err := NewEnvelope(e.id, to, action, payload)
	if err != nil {
		return nil, err
	}
	return e.transport.Request(ctx, env)
}
