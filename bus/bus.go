// Package bus carries envelopes between processes. The sending endpoint,
// never the payload, decides who a message is from.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/quill/id"
)

var (
	// ErrUnknownProcess is returned when no process is registered under the
	// destination ID.
	ErrUnknownProcess = errors.New("bus: unknown process")

	// ErrRequestUnsupported is returned by transports that cannot carry
	// request/reply traffic.
	ErrRequestUnsupported = errors.New("bus: transport does not support requests")
)

// Envelope is one message between processes.
type Envelope struct {
	ID      id.EnvelopeID   `json:"id"`
	From    string          `json:"from"`
	To      string          `json:"to"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (e *Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("bus: decode %s payload: %w", e.Action, err)
	}
	return nil
}

// Mailbox accepts envelopes for one process.
type Mailbox interface {
	// Deliver enqueues env without waiting for it to be handled.
	Deliver(env *Envelope) error

	// Ask enqueues env and waits for the handler's reply.
	Ask(ctx context.Context, env *Envelope) (json.RawMessage, error)
}

// Transport moves fully formed envelopes to their destination.
type Transport interface {
	Deliver(ctx context.Context, env *Envelope) error
	Request(ctx context.Context, env *Envelope) (json.RawMessage, error)
}

// Sender sends fire-and-forget messages on behalf of one process.
type Sender interface {
	// ID returns the identity stamped on every outgoing envelope.
	ID() string

	// Send delivers action to the process to without waiting for a reply.
	Send(ctx context.Context, to, action string, payload any) error
}

// Requester sends request/reply messages on behalf of one process.
type Requester interface {
	Sender

	// Ask delivers action to the process to and waits for its reply.
	Ask(ctx context.Context, to, action string, payload any) (json.RawMessage, error)
}

// NewEnvelope builds an envelope from from to to, encoding payload as JSON.
// A nil payload yields an empty one.
func NewEnvelope(from, to, action string, payload any) (*Envelope, error) {
	env := &Envelope{
		ID:     id.NewEnvelopeID(),
		From:   from,
		To:     to,
		Action: action,
		SentAt: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("bus: encode %s payload: %w", action, err)
		}
		env.Payload = raw
	}
	return env, nil
}
