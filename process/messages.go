package process

import (
	"github.com/xraph/quill/event"
)

// Actions understood by a blog process.
const (
	ActionInitialize     = "Initialize"
	ActionCreateRole     = "Create-Role"
	ActionGrantRole      = "Grant-Role"
	ActionRevokeRole     = "Revoke-Role"
	ActionRenounceRole   = "Renounce-Role"
	ActionSetRoleAdmin   = "Set-Role-Admin"
	ActionHasRole        = "Has-Role"
	ActionGetRoleAdmin   = "Get-Role-Admin"
	ActionGetRoleMembers = "Get-Role-Members"
	ActionGetUserRoles   = "Get-User-Roles"
	ActionGetAllRoles    = "Get-All-Roles"
	ActionBulkGrantRole  = "Bulk-Grant-Role"
	ActionBulkRevokeRole = "Bulk-Revoke-Role"
	ActionAddEditors     = "Add-Editors"
	ActionRemoveEditors  = "Remove-Editors"
	ActionGetEvents      = "Get-Events"
	ActionClearEvents    = "Clear-Events"
	ActionResyncAll      = "Resync-All"
)

// InitializeRequest is the payload of Initialize. The caller becomes the
// owner when Owner is empty.
type InitializeRequest struct {
	Owner string `json:"owner,omitempty"`
}

// RoleRequest names a role, optionally with its admin role. It is the
// payload of Create-Role, Set-Role-Admin, Renounce-Role, Get-Role-Admin and
// Get-Role-Members.
type RoleRequest struct {
	Role      string `json:"role"`
	AdminRole string `json:"admin_role,omitempty"`
}

// MembershipRequest is the payload of Grant-Role, Revoke-Role and Has-Role.
type MembershipRequest struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

// AccountRequest is the payload of Get-User-Roles.
type AccountRequest struct {
	Account string `json:"account"`
}

// BulkRequest is the payload of Bulk-Grant-Role and Bulk-Revoke-Role.
type BulkRequest struct {
	Role     string   `json:"role"`
	Accounts []string `json:"accounts"`
}

// EditorsRequest is the payload of Add-Editors and Remove-Editors.
type EditorsRequest struct {
	Accounts []string `json:"accounts"`
}

// EventsRequest is the payload of Get-Events.
type EventsRequest struct {
	Filter *event.QueryFilter `json:"filter,omitempty"`
}

// HasRoleResponse is the reply to Has-Role.
type HasRoleResponse struct {
	HasRole bool `json:"has_role"`
}

// RoleAdminResponse is the reply to Get-Role-Admin.
type RoleAdminResponse struct {
	Role      string `json:"role"`
	AdminRole string `json:"admin_role"`
}

// EventsResponse is the reply to Get-Events.
type EventsResponse struct {
	Events []*event.Event `json:"events"`
	Total  int            `json:"total"`
}

// ClearEventsResponse is the reply to Clear-Events.
type ClearEventsResponse struct {
	Cleared int `json:"cleared"`
}

// ResyncResponse is the reply to Resync-All.
type ResyncResponse struct {
	Pushed int    `json:"pushed"`
	Errors string `json:"errors,omitempty"`
}
