// Package process turns envelopes into Engine and Registry calls. Every
// reply is a quill.Result encoded as JSON; handler errors and panics never
// cross the message boundary.
package process

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xraph/quill"
	"github.com/xraph/quill/actor"
	"github.com/xraph/quill/bus"
)

// ErrUnknownAction is returned for an action the handler does not serve.
var ErrUnknownAction = fmt.Errorf("%w: unknown action", quill.ErrValidation)

type actionFunc func(ctx context.Context, env *bus.Envelope) (any, error)

// table dispatches envelopes by action name.
type table struct {
	name    string
	actions map[string]actionFunc
	logger  *slog.Logger
}

// Compile-time interface check.
var _ actor.Handler = (*table)(nil)

func (t *table) Handle(ctx context.Context, env *bus.Envelope) json.RawMessage {
	res := quill.Safe(func() (any, error) {
		fn, ok := t.actions[env.Action]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
		}
		return fn(ctx, env)
	})
	if !res.Success {
		level := slog.LevelDebug
		if res.Kind == quill.KindInternal {
			level = slog.LevelError
		}
		t.logger.Log(ctx, level, "action failed",
			slog.String("process", t.name),
			slog.String("action", env.Action),
			slog.String("from", env.From),
			slog.String("kind", string(res.Kind)),
			slog.String("error", res.Error),
		)
	}
	return encode(res)
}

// Actions returns the action names the handler serves.
func (t *table) Actions() []string {
	out := make([]string, 0, len(t.actions))
	for name := range t.actions {
		out = append(out, name)
	}
	return out
}

func encode(res quill.Result[any]) json.RawMessage {
	raw, err := json.Marshal(res)
	if err != nil {
		raw, _ = json.Marshal(quill.Fail[any](fmt.Errorf("%w: encode reply: %v", quill.ErrInternal, err)))
	}
	return raw
}

// decode unmarshals the envelope payload into a new T, mapping malformed
// input to a validation error.
func decode[T any](env *bus.Envelope) (T, error) {
	var v T
	if err := env.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", quill.ErrValidation, err)
	}
	return v, nil
}

// DecodeReply unmarshals a reply produced by a handler into a Result.
func DecodeReply[T any](raw json.RawMessage) (quill.Result[T], error) {
	var res quill.Result[T]
	if err := json.Unmarshal(raw, &res); err != nil {
		return res, fmt.Errorf("process: decode reply: %w", err)
	}
	return res, nil
}
