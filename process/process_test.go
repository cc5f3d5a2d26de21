package process

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/quill"
	"github.com/xraph/quill/actor"
	"github.com/xraph/quill/bus"
	"github.com/xraph/quill/registry"
	"github.com/xraph/quill/regsync"
	"github.com/xraph/quill/store/memory"
)

const blogID = "blog-1"

type harness struct {
	local *bus.Local
	reg   *registry.Registry
	blog  *Blog
}

func run(t *testing.T, p *actor.Process) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-p.Done()
	})
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	local := bus.NewLocal()
	reg := registry.New(memory.New())
	run(t, NewRegistryProcess(regsync.DefaultRegistryID, reg, local, 0, nil))

	blog, err := NewBlog(blogID, local, BlogConfig{})
	require.NoError(t, err)
	run(t, blog.Process)
	return &harness{local: local, reg: reg, blog: blog}
}

func ask[T any](t *testing.T, h *harness, from, to, action string, payload any) quill.Result[T] {
	t.Helper()
	raw, err := h.local.Endpoint(from).Ask(context.Background(), to, action, payload)
	require.NoError(t, err)
	res, err := DecodeReply[T](raw)
	require.NoError(t, err)
	return res
}

func TestBlogLifecycleSyncsRegistry(t *testing.T) {
	h := newHarness(t)
	reg := regsync.DefaultRegistryID

	res := ask[any](t, h, "alice", blogID, ActionInitialize, InitializeRequest{})
	require.True(t, res.Success, res.Error)

	blogs := ask[[]registry.BlogPermissionEntry](t, h, "alice", reg, registry.ActionGetWalletBlogs, registry.WalletRequest{Wallet: "alice"})
	require.True(t, blogs.Success, blogs.Error)
	require.Len(t, blogs.Data, 1)
	require.Equal(t, blogID, blogs.Data[0].BlogID)
	require.Equal(t, []string{quill.RootRole}, blogs.Data[0].Roles)

	added := ask[[]quill.BulkOutcome](t, h, "alice", blogID, ActionAddEditors, EditorsRequest{Accounts: []string{"bob", "carol"}})
	require.True(t, added.Success, added.Error)
	require.Len(t, added.Data, 2)
	for _, o := range added.Data {
		require.True(t, o.Success, o.Error)
	}

	check := ask[registry.CheckResponse](t, h, "anyone", reg, registry.ActionCheckWalletRole,
		registry.CheckRequest{Wallet: "bob", BlogID: blogID, Role: quill.EditorRole})
	require.True(t, check.Success, check.Error)
	require.True(t, check.Data.HasRole)

	denied := ask[[]quill.BulkOutcome](t, h, "bob", blogID, ActionAddEditors, EditorsRequest{Accounts: []string{"dave"}})
	require.False(t, denied.Success)
	require.Equal(t, quill.KindAuth, denied.Kind)

	revoked := ask[any](t, h, "alice", blogID, ActionRevokeRole, MembershipRequest{Role: quill.EditorRole, Account: "bob"})
	require.True(t, revoked.Success, revoked.Error)

	bobBlogs := ask[[]registry.BlogPermissionEntry](t, h, "alice", reg, registry.ActionGetWalletBlogs, registry.WalletRequest{Wallet: "bob"})
	require.True(t, bobBlogs.Success, bobBlogs.Error)
	require.Empty(t, bobBlogs.Data)

	editable := ask[[]registry.BlogPermissionEntry](t, h, "carol", reg, registry.ActionGetEditableBlogs, registry.WalletRequest{Wallet: "carol"})
	require.True(t, editable.Success, editable.Error)
	require.Len(t, editable.Data, 1)

	has := ask[HasRoleResponse](t, h, "carol", blogID, ActionHasRole, MembershipRequest{Role: quill.EditorRole, Account: "bob"})
	require.True(t, has.Success, has.Error)
	require.False(t, has.Data.HasRole)

	events := ask[EventsResponse](t, h, "carol", blogID, ActionGetEvents, EventsRequest{})
	require.True(t, events.Success, events.Error)
	require.Equal(t, 6, events.Data.Total)
	require.Len(t, events.Data.Events, 6)
}

func TestRegistryIgnoresForgedBlogID(t *testing.T) {
	h := newHarness(t)

	forged := map[string]any{
		"wallet":  "mallory",
		"roles":   []string{quill.RootRole},
		"blog_id": "someone-elses-blog",
	}
	res := ask[any](t, h, blogID, regsync.DefaultRegistryID, registry.ActionRegisterWalletPermissions, forged)
	require.True(t, res.Success, res.Error)

	ctx := context.Background()
	victims, err := h.reg.BlogWallets(ctx, "someone-elses-blog")
	require.NoError(t, err)
	require.Empty(t, victims)

	own, err := h.reg.BlogWallets(ctx, blogID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "mallory", own[0].Wallet)
}

func TestRegistryRejectsUntrackedRoles(t *testing.T) {
	h := newHarness(t)

	res := ask[any](t, h, blogID, regsync.DefaultRegistryID, registry.ActionRegisterWalletPermissions,
		registry.RolesRequest{Wallet: "w", Roles: []string{"WRITER"}})
	require.False(t, res.Success)
	require.Equal(t, quill.KindValidation, res.Kind)
}

func TestUnknownAction(t *testing.T) {
	h := newHarness(t)

	res := ask[any](t, h, "alice", blogID, "Self-Destruct", nil)
	require.False(t, res.Success)
	require.Equal(t, quill.KindValidation, res.Kind)
	require.Contains(t, res.Error, "Self-Destruct")
}

func TestMalformedPayload(t *testing.T) {
	h := newHarness(t)

	res := ask[any](t, h, "alice", blogID, ActionGrantRole, map[string]any{"role": 42})
	require.False(t, res.Success)
	require.Equal(t, quill.KindValidation, res.Kind)
}

func TestPanicBecomesInternalResult(t *testing.T) {
	tbl := &table{
		name:   "boom",
		logger: slog.Default(),
		actions: map[string]actionFunc{
			"Boom": func(context.Context, *bus.Envelope) (any, error) { panic("kaboom") },
		},
	}
	env, err := bus.NewEnvelope("alice", "boom", "Boom", nil)
	require.NoError(t, err)

	res, err := DecodeReply[any](tbl.Handle(context.Background(), env))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, quill.KindInternal, res.Kind)
	require.Contains(t, res.Error, "kaboom")
}

func TestResyncAllRequiresRoot(t *testing.T) {
	h := newHarness(t)
	require.True(t, ask[any](t, h, "alice", blogID, ActionInitialize, InitializeRequest{}).Success)

	// Drop the registry copy so the resync has something to restore.
	require.NoError(t, h.reg.Remove(context.Background(), "alice", blogID))

	denied := ask[ResyncResponse](t, h, "bob", blogID, ActionResyncAll, nil)
	require.False(t, denied.Success)
	require.Equal(t, quill.KindAuth, denied.Kind)

	res := ask[ResyncResponse](t, h, "alice", blogID, ActionResyncAll, nil)
	require.True(t, res.Success, res.Error)
	require.Equal(t, 1, res.Data.Pushed)
	require.Empty(t, res.Data.Errors)

	ok := ask[registry.CheckResponse](t, h, "alice", regsync.DefaultRegistryID, registry.ActionCheckWalletRole,
		registry.CheckRequest{Wallet: "alice", BlogID: blogID, Role: quill.RootRole})
	require.True(t, ok.Data.HasRole)
}

func TestClearEventsAndQueries(t *testing.T) {
	h := newHarness(t)
	require.True(t, ask[any](t, h, "alice", blogID, ActionInitialize, InitializeRequest{Owner: "owner"}).Success)

	admin := ask[RoleAdminResponse](t, h, "x", blogID, ActionGetRoleAdmin, RoleRequest{Role: quill.RootRole})
	require.True(t, admin.Success, admin.Error)
	require.Equal(t, quill.RootRole, admin.Data.AdminRole)

	members := ask[[]string](t, h, "x", blogID, ActionGetRoleMembers, RoleRequest{Role: quill.RootRole})
	require.Equal(t, []string{"owner"}, members.Data)

	missing := ask[[]string](t, h, "x", blogID, ActionGetRoleMembers, RoleRequest{Role: "NOPE"})
	require.False(t, missing.Success)
	require.Equal(t, quill.KindNotFound, missing.Kind)

	denied := ask[ClearEventsResponse](t, h, "alice", blogID, ActionClearEvents, nil)
	require.False(t, denied.Success)

	cleared := ask[ClearEventsResponse](t, h, "owner", blogID, ActionClearEvents, nil)
	require.True(t, cleared.Success, cleared.Error)
	require.Equal(t, 2, cleared.Data.Cleared)
}

func TestNewBlogEngineConfig(t *testing.T) {
	ctx := context.Background()
	accounts := make([]string, 150)
	for i := range accounts {
		accounts[i] = fmt.Sprintf("wallet-%03d", i)
	}

	setup := func(cfg BlogConfig) *Blog {
		t.Helper()
		b, err := NewBlog("blog-cfg", bus.NewLocal(), cfg)
		require.NoError(t, err)
		require.NoError(t, b.Engine.Initialize(ctx, "alice", "alice"))
		require.NoError(t, b.Engine.CreateRole(ctx, "alice", "WRITER", ""))
		return b
	}

	// Nil engine config falls back to the default bulk cap.
	_, err := setup(BlogConfig{}).Engine.BulkGrantRole(ctx, "alice", "WRITER", accounts)
	require.ErrorIs(t, err, quill.ErrBatchTooLarge)

	// An explicit zero cap means no limit.
	outcomes, err := setup(BlogConfig{Engine: &quill.Config{}}).Engine.BulkGrantRole(ctx, "alice", "WRITER", accounts)
	require.NoError(t, err)
	require.Len(t, outcomes, len(accounts))
}
