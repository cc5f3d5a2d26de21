package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/quill"
	"github.com/xraph/quill/actor"
	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/middleware"
	"github.com/xraph/quill/process"
)

// anonymous is the sender of read-only requests without an authenticated
// wallet.
const anonymous = "anonymous"

// send asks process to with the request's wallet as sender. Writes require
// an authenticated wallet; reads fall back to anonymous.
func send[T any](a *API, ctx forge.Context, write bool, to, action string, payload any) (T, error) {
	var zero T
	caller := middleware.Caller(ctx)
	if caller == "" {
		if write {
			return zero, forge.Forbidden("authentication required")
		}
		caller = anonymous
	}

	raw, err := bus.NewEndpoint(caller, a.host.Local()).Ask(ctx.Context(), to, action, payload)
	if err != nil {
		return zero, mapTransportError(err)
	}
	res, err := process.DecodeReply[T](raw)
	if err != nil {
		return zero, err
	}
	if !res.Success {
		return zero, mapResult(res.Kind, res.Error)
	}
	return res.Data, nil
}

// authorize rejects the request unless the caller passes check on blogID.
func (a *API) authorize(ctx forge.Context, blogID string, check middleware.Check) error {
	switch status, msg := middleware.Authorize(a.host, blogID, middleware.Caller(ctx), check); status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return forge.NotFound(msg)
	default:
		return forge.Forbidden(msg)
	}
}

// mapResult maps a failed Result to a Forge HTTP error.
func mapResult(kind quill.ErrorKind, msg string) error {
	switch kind {
	case quill.KindValidation, quill.KindInvariant:
		return forge.BadRequest(msg)
	case quill.KindNotFound:
		return forge.NotFound(msg)
	case quill.KindAuth:
		return forge.Forbidden(msg)
	default:
		return errors.New(msg)
	}
}

func mapTransportError(err error) error {
	switch {
	case errors.Is(err, bus.ErrUnknownProcess):
		return forge.NotFound(err.Error())
	case errors.Is(err, actor.ErrMailboxFull), errors.Is(err, actor.ErrStopped):
		return fmt.Errorf("quill: process unavailable: %w", err)
	default:
		return err
	}
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
