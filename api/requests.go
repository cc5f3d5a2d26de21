package api

// ──────────────────────────────────────────────────
// Blog requests
// ──────────────────────────────────────────────────

// BlogPathRequest is the path parameter naming a blog.
type BlogPathRequest struct {
	BlogID string `path:"blogId" description:"Blog process ID"`
}

// InitializeBlogRequest is the body for initializing a blog.
type InitializeBlogRequest struct {
	BlogID string `path:"blogId" description:"Blog process ID"`
	Owner  string `json:"owner,omitempty" description:"Initial root holder (default: caller)"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// CreateRoleRequest is the body for declaring a role.
type CreateRoleRequest struct {
	BlogID    string `path:"blogId" description:"Blog process ID"`
	Role      string `json:"role" description:"Role name"`
	AdminRole string `json:"admin_role,omitempty" description:"Administering role (default: DEFAULT_ADMIN_ROLE)"`
}

// RolePathRequest names a role on a blog.
type RolePathRequest struct {
	BlogID string `path:"blogId" description:"Blog process ID"`
	Role   string `path:"role" description:"Role name"`
}

// SetRoleAdminRequest is the body for rebinding a role's admin role.
type SetRoleAdminRequest struct {
	BlogID    string `path:"blogId" description:"Blog process ID"`
	Role      string `path:"role" description:"Role name"`
	AdminRole string `json:"admin_role" description:"New administering role"`
}

// GrantRoleRequest is the body for granting a role.
type GrantRoleRequest struct {
	BlogID  string `path:"blogId" description:"Blog process ID"`
	Role    string `path:"role" description:"Role name"`
	Account string `json:"account" description:"Wallet to grant"`
}

// MemberPathRequest names one holder of a role.
type MemberPathRequest struct {
	BlogID  string `path:"blogId" description:"Blog process ID"`
	Role    string `path:"role" description:"Role name"`
	Account string `path:"account" description:"Wallet"`
}

// BulkRoleRequest is the body for bulk grant and revoke.
type BulkRoleRequest struct {
	BlogID   string   `path:"blogId" description:"Blog process ID"`
	Role     string   `path:"role" description:"Role name"`
	Accounts []string `json:"accounts" description:"Wallets"`
}

// AccountRolesRequest names an account on a blog.
type AccountRolesRequest struct {
	BlogID  string `path:"blogId" description:"Blog process ID"`
	Account string `path:"account" description:"Wallet"`
}

// EditorsRequest is the body for adding or removing editors.
type EditorsRequest struct {
	BlogID   string   `path:"blogId" description:"Blog process ID"`
	Accounts []string `json:"accounts" description:"Wallets"`
}

// ──────────────────────────────────────────────────
// Event requests
// ──────────────────────────────────────────────────

// ListEventsRequest holds query parameters for listing audit events.
type ListEventsRequest struct {
	BlogID  string `path:"blogId" description:"Blog process ID"`
	Type    string `query:"type" description:"Filter by event type"`
	Role    string `query:"role" description:"Filter by role"`
	Account string `query:"account" description:"Filter by account"`
	Caller  string `query:"caller" description:"Filter by caller"`
	Limit   int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset  int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Registry requests
// ──────────────────────────────────────────────────

// WalletPathRequest names a wallet.
type WalletPathRequest struct {
	Wallet string `path:"wallet" description:"Wallet address"`
}

// CheckWalletRoleRequest holds query parameters for a registry role check.
type CheckWalletRoleRequest struct {
	Wallet string `query:"wallet" description:"Wallet address"`
	BlogID string `query:"blog_id" description:"Blog process ID"`
	Role   string `query:"role" description:"Role name"`
}
