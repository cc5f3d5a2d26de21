package registry

// Actions understood by the registry process.
const (
	ActionInfo                      = "Info"
	ActionGetWalletBlogs            = "Get-Wallet-Blogs"
	ActionGetBlogWallets            = "Get-Blog-Wallets"
	ActionCheckWalletRole           = "Check-Wallet-Role"
	ActionGetRegistryStats          = "Get-Registry-Stats"
	ActionGetAdminBlogs             = "Get-Admin-Blogs"
	ActionGetEditableBlogs          = "Get-Editable-Blogs"
	ActionRegisterWalletPermissions = "Register-Wallet-Permissions"
	ActionRemoveWalletPermissions   = "Remove-Wallet-Permissions"
	ActionUpdateWalletRoles         = "Update-Wallet-Roles"
)

// WalletRequest names a wallet. It is the payload of
// Get-Wallet-Blogs, Get-Admin-Blogs, Get-Editable-Blogs and
// Remove-Wallet-Permissions.
type WalletRequest struct {
	Wallet string `json:"wallet"`
}

// BlogRequest is the payload of Get-Blog-Wallets.
type BlogRequest struct {
	BlogID string `json:"blog_id"`
}

// CheckRequest is the payload of Check-Wallet-Role.
type CheckRequest struct {
	Wallet string `json:"wallet"`
	BlogID string `json:"blog_id"`
	Role   string `json:"role"`
}

// CheckResponse is the reply to Check-Wallet-Role.
type CheckResponse struct {
	HasRole bool `json:"has_role"`
}

// RolesRequest is the payload of Register-Wallet-Permissions and
// Update-Wallet-Roles. The blog is always the sender.
type RolesRequest struct {
	Wallet string   `json:"wallet"`
	Roles  []string `json:"roles"`
}
