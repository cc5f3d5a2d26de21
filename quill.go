// Package quill provides per-blog role-based access control and the
// message-level plumbing that keeps a central wallet registry in step with
// it.
//
// Every blog process owns one Engine. The engine stores which accounts hold
// which roles, which role administers each role, and guarantees the root
// role never loses its last holder.
//
//	eng, err := quill.NewEngine(quill.WithLogger(logger))
//	if err := eng.Initialize(ctx, "deployer", "wallet-alice"); err != nil {
//	    return err
//	}
//	err = eng.GrantRole(ctx, "wallet-alice", role.EditorRole, "wallet-bob")
package quill

import "github.com/xraph/quill/role"

// Well-known role names, re-exported for callers of the root package.
const (
	RootRole   = role.RootRole
	EditorRole = role.EditorRole
)

// BulkOutcome reports the result of one account inside a bulk request.
type BulkOutcome struct {
	Account string    `json:"account"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}
