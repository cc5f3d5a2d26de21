package quill

import (
	"errors"
	"fmt"

	"github.com/xraph/quill/role"
)

// ErrorKind classifies an error for callers at the message boundary.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindAuth       ErrorKind = "authorization"
	KindInvariant  ErrorKind = "invariant_violation"
	KindInternal   ErrorKind = "internal"
)

// Error kinds. Every error returned by the engine wraps exactly one of them.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("quill: validation error")

	// ErrNotFound marks an unknown role, account or pair.
	ErrNotFound = errors.New("quill: not found")

	// ErrUnauthorized marks a caller lacking the required role relationship.
	ErrUnauthorized = errors.New("quill: unauthorized")

	// ErrInvariantViolation marks an operation rejected to keep the root role held.
	ErrInvariantViolation = errors.New("quill: invariant violation")

	// ErrInternal marks an unexpected failure inside a handler.
	ErrInternal = errors.New("quill: internal error")
)

var (
	// ErrNotInitialized is returned by every operation before Initialize.
	ErrNotInitialized = fmt.Errorf("%w: engine not initialized", ErrValidation)

	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = fmt.Errorf("%w: engine already initialized", ErrValidation)

	// ErrEmptyAccount is returned when an account or caller is empty.
	ErrEmptyAccount = fmt.Errorf("%w: account must be a non-empty string", ErrValidation)

	// ErrEmptyRole is returned when a role name is empty.
	ErrEmptyRole = fmt.Errorf("%w: role must be a non-empty string", ErrValidation)

	// ErrRoleExists is returned when creating a role that is already declared.
	ErrRoleExists = fmt.Errorf("%w: role already exists", ErrValidation)

	// ErrAlreadyHasRole is returned when granting a role the account holds.
	ErrAlreadyHasRole = fmt.Errorf("%w: account already has role", ErrValidation)

	// ErrBatchTooLarge is returned when a bulk request exceeds Config.MaxBulkSize.
	ErrBatchTooLarge = fmt.Errorf("%w: too many accounts in bulk request", ErrValidation)

	// ErrRoleNotFound is returned for an undeclared role.
	ErrRoleNotFound = fmt.Errorf("%w: role not declared", ErrNotFound)

	// ErrMissingRole is returned when revoking a role the account does not hold.
	ErrMissingRole = fmt.Errorf("%w: account does not have role", ErrNotFound)

	// ErrNotAdmin is returned when the caller cannot administer the role.
	ErrNotAdmin = fmt.Errorf("%w: caller is not an admin of role", ErrUnauthorized)

	// ErrLacksRole is returned by OnlyRole when the caller does not hold the role.
	ErrLacksRole = fmt.Errorf("%w: caller does not have role", ErrUnauthorized)

	// ErrLastRootHolder is returned when an operation would leave the root
	// role without holders.
	ErrLastRootHolder = fmt.Errorf("%w: cannot remove the last holder of the root role", ErrInvariantViolation)
)

// KindOf classifies err. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindAuth
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariant
	default:
		return KindInternal
	}
}

// translateRoleErr maps role store sentinels onto engine errors, keeping
// both in the chain.
func translateRoleErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, role.ErrRoleExists):
		return fmt.Errorf("%w: %w", ErrRoleExists, err)
	case errors.Is(err, role.ErrRoleNotFound):
		return fmt.Errorf("%w: %w", ErrRoleNotFound, err)
	case errors.Is(err, role.ErrAlreadyMember):
		return fmt.Errorf("%w: %w", ErrAlreadyHasRole, err)
	case errors.Is(err, role.ErrNotMember):
		return fmt.Errorf("%w: %w", ErrMissingRole, err)
	case errors.Is(err, role.ErrLastRootHolder):
		return fmt.Errorf("%w: %w", ErrLastRootHolder, err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
