package quill

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/xraph/quill/event"
	"github.com/xraph/quill/role"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := NewEngine(opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Initialize(context.Background(), "alice", "alice"); err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestNewEngine_RejectsNegativeBulkSize(t *testing.T) {
	if _, err := NewEngine(WithConfig(Config{MaxBulkSize: -1})); err == nil {
		t.Fatal("expected error for negative bulk size")
	}
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	eng, _ := NewEngine()

	if eng.IsInitialized() {
		t.Fatal("new engine must not be initialized")
	}
	if err := eng.Initialize(ctx, "deployer", ""); !errors.Is(err, ErrEmptyAccount) {
		t.Fatalf("expected ErrEmptyAccount, got %v", err)
	}
	if err := eng.Initialize(ctx, "deployer", "alice"); err != nil {
		t.Fatal(err)
	}
	if !eng.RoleExists(RootRole) {
		t.Fatal("root role must exist after initialize")
	}
	ok, err := eng.HasRole("alice", RootRole)
	if err != nil || !ok {
		t.Fatalf("expected alice to hold root, got %v %v", ok, err)
	}

	err = eng.Initialize(ctx, "mallory", "mallory")
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
	if ok, _ := eng.HasRole("mallory", RootRole); ok {
		t.Fatal("second initialize must not grant root")
	}

	evs := eng.Events(nil)
	if len(evs) != 2 || evs[0].Type != event.TypeRoleCreated || evs[1].Type != event.TypeRoleGranted {
		t.Fatalf("expected created+granted events, got %+v", evs)
	}
}

func TestNotInitialized(t *testing.T) {
	ctx := context.Background()
	eng, _ := NewEngine()

	if err := eng.CreateRole(ctx, "alice", EditorRole, ""); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := eng.HasRole("alice", RootRole); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if KindOf(ErrNotInitialized) != KindValidation {
		t.Fatalf("expected validation kind, got %s", KindOf(ErrNotInitialized))
	}
}

func TestCreateGrantScenario(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	if err := eng.CreateRole(ctx, "alice", "EDITOR", RootRole); err != nil {
		t.Fatal(err)
	}
	if err := eng.GrantRole(ctx, "alice", "EDITOR", "bob"); err != nil {
		t.Fatal(err)
	}
	ok, err := eng.HasRole("bob", "EDITOR")
	if err != nil || !ok {
		t.Fatalf("expected bob to hold EDITOR, got %v %v", ok, err)
	}
	members, err := eng.GetRoleMembers("EDITOR")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(members, []string{"bob"}) {
		t.Fatalf("expected [bob], got %v", members)
	}
}

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	if err := eng.CreateRole(ctx, "alice", EditorRole, ""); err != nil {
		t.Fatal(err)
	}
	admin, err := eng.GetRoleAdmin(EditorRole)
	if err != nil {
		t.Fatal(err)
	}
	if admin != RootRole {
		t.Fatalf("omitted admin role should default to root, got %q", admin)
	}

	if err := eng.CreateRole(ctx, "alice", "WRITER", EditorRole); err != nil {
		t.Fatal(err)
	}
	if admin, _ := eng.GetRoleAdmin("WRITER"); admin != EditorRole {
		t.Fatalf("expected admin %q, got %q", EditorRole, admin)
	}

	if err := eng.CreateRole(ctx, "alice", EditorRole, ""); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
	if err := eng.CreateRole(ctx, "alice", "X", "MISSING"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if err := eng.CreateRole(ctx, "bob", "Y", ""); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if err := eng.CreateRole(ctx, "alice", "", ""); !errors.Is(err, ErrEmptyRole) {
		t.Fatalf("expected ErrEmptyRole, got %v", err)
	}
}

func TestCreateRoleRequiresAdminOfAdminRole(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	if err := eng.CreateRole(ctx, "alice", "MODERATOR", RootRole); err != nil {
		t.Fatal(err)
	}
	if err := eng.CreateRole(ctx, "alice", EditorRole, "MODERATOR"); err != nil {
		t.Fatal(err)
	}
	if err := eng.GrantRole(ctx, "alice", "MODERATOR", "carol"); err != nil {
		t.Fatal(err)
	}
	if err := eng.GrantRole(ctx, "alice", EditorRole, "bob"); err != nil {
		t.Fatal(err)
	}

	// bob holds EDITOR_ROLE but not its admin role.
	if err := eng.CreateRole(ctx, "bob", "WRITER", EditorRole); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin for a holder of the admin role itself, got %v", err)
	}
	if eng.RoleExists("WRITER") {
		t.Fatal("rejected create must not declare the role")
	}

	// carol holds MODERATOR, which administers EDITOR_ROLE.
	if err := eng.CreateRole(ctx, "carol", "WRITER", EditorRole); err != nil {
		t.Fatalf("admin of the admin role should create, got %v", err)
	}
	if admin, _ := eng.GetRoleAdmin("WRITER"); admin != EditorRole {
		t.Fatalf("expected admin %q, got %q", EditorRole, admin)
	}
}

func TestGrantRevoke(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")

	if err := eng.GrantRole(ctx, "alice", EditorRole, "bob"); err != nil {
		t.Fatal(err)
	}
	err := eng.GrantRole(ctx, "alice", EditorRole, "bob")
	if !errors.Is(err, ErrAlreadyHasRole) {
		t.Fatalf("expected ErrAlreadyHasRole, got %v", err)
	}
	if !errors.Is(err, role.ErrAlreadyMember) {
		t.Fatal("role store sentinel should stay in the chain")
	}

	if err := eng.RevokeRole(ctx, "alice", EditorRole, "bob"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := eng.HasRole("bob", EditorRole); ok {
		t.Fatal("expected bob to no longer hold editor")
	}
	err = eng.RevokeRole(ctx, "alice", EditorRole, "bob")
	if !errors.Is(err, ErrMissingRole) || KindOf(err) != KindNotFound {
		t.Fatalf("expected not-found ErrMissingRole, got %v", err)
	}

	if err := eng.GrantRole(ctx, "bob", EditorRole, "carol"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if err := eng.GrantRole(ctx, "alice", "MISSING", "carol"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if err := eng.GrantRole(ctx, "alice", EditorRole, ""); !errors.Is(err, ErrEmptyAccount) {
		t.Fatalf("expected ErrEmptyAccount, got %v", err)
	}
}

func TestRootAdminSafety(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	err := eng.RevokeRole(ctx, "alice", RootRole, "alice")
	if !errors.Is(err, ErrLastRootHolder) || KindOf(err) != KindInvariant {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	err = eng.RenounceRole(ctx, "alice", RootRole)
	if !errors.Is(err, ErrLastRootHolder) {
		t.Fatalf("expected ErrLastRootHolder on renounce, got %v", err)
	}
	if members, _ := eng.GetRoleMembers(RootRole); !slices.Equal(members, []string{"alice"}) {
		t.Fatalf("root membership must be unchanged, got %v", members)
	}

	if err := eng.GrantRole(ctx, "alice", RootRole, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := eng.RenounceRole(ctx, "alice", RootRole); err != nil {
		t.Fatalf("renounce with a second root holder: %v", err)
	}
	if err := eng.RevokeRole(ctx, "bob", RootRole, "bob"); !errors.Is(err, ErrLastRootHolder) {
		t.Fatalf("expected ErrLastRootHolder for bob, got %v", err)
	}
}

func TestRenounceRole(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob")

	// No admin check applies to renouncing one's own role.
	if err := eng.RenounceRole(ctx, "bob", EditorRole); err != nil {
		t.Fatal(err)
	}
	if ok, _ := eng.HasRole("bob", EditorRole); ok {
		t.Fatal("expected bob to have renounced editor")
	}
	if err := eng.RenounceRole(ctx, "bob", EditorRole); !errors.Is(err, ErrMissingRole) {
		t.Fatalf("expected ErrMissingRole, got %v", err)
	}

	evs := eng.Events(&event.QueryFilter{Type: event.TypeRoleRenounced})
	if len(evs) != 1 || evs[0].Account != "bob" || evs[0].Caller != "bob" {
		t.Fatalf("unexpected renounce events %+v", evs)
	}
}

func TestAdminResolution(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.CreateRole(ctx, "alice", "WRITER", EditorRole)
	_ = eng.CreateRole(ctx, "alice", "REVIEWER", "WRITER")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob")

	// Direct admin.
	if err := eng.GrantRole(ctx, "bob", "WRITER", "carol"); err != nil {
		t.Fatalf("editor should administer writer: %v", err)
	}
	// Admin of an admin is not enough.
	if err := eng.GrantRole(ctx, "bob", "REVIEWER", "dave"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin two levels up, got %v", err)
	}
	// Root always administers.
	if err := eng.GrantRole(ctx, "alice", "REVIEWER", "dave"); err != nil {
		t.Fatalf("root should administer every role: %v", err)
	}

	ok, err := eng.CanAdminister("carol", "REVIEWER")
	if err != nil || !ok {
		t.Fatalf("writer should administer reviewer, got %v %v", ok, err)
	}
	if ok, _ := eng.CanAdminister("dave", "WRITER"); ok {
		t.Fatal("reviewer must not administer writer")
	}
}

func TestSetRoleAdmin(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.CreateRole(ctx, "alice", "WRITER", "")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob")

	if err := eng.GrantRole(ctx, "bob", "WRITER", "carol"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin before rebinding, got %v", err)
	}
	if err := eng.SetRoleAdmin(ctx, "bob", "WRITER", EditorRole); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin for rebinding without authority, got %v", err)
	}
	if err := eng.SetRoleAdmin(ctx, "alice", "WRITER", EditorRole); err != nil {
		t.Fatal(err)
	}
	if err := eng.GrantRole(ctx, "bob", "WRITER", "carol"); err != nil {
		t.Fatalf("editor should now administer writer: %v", err)
	}
	if err := eng.SetRoleAdmin(ctx, "alice", "WRITER", "MISSING"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	evs := eng.Events(&event.QueryFilter{Type: event.TypeRoleAdminChanged})
	if len(evs) != 1 {
		t.Fatalf("expected 1 admin change event, got %d", len(evs))
	}
	if evs[0].PreviousAdminRole != RootRole || evs[0].AdminRole != EditorRole {
		t.Fatalf("unexpected admin change %+v", evs[0])
	}

	// Cycles among non-root roles are accepted.
	if err := eng.SetRoleAdmin(ctx, "alice", EditorRole, "WRITER"); err != nil {
		t.Fatalf("expected admin cycle to be accepted, got %v", err)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "alice")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob")

	roles, err := eng.GetUserRoles("alice")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(roles, []string{RootRole, EditorRole}) {
		t.Fatalf("unexpected roles %v", roles)
	}
	if got := eng.Snapshot("nobody"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil snapshot, got %#v", got)
	}
	all, err := eng.GetAllRoles()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(all))
	}
	if !slices.Equal(eng.Accounts(), []string{"alice", "bob"}) {
		t.Fatalf("unexpected accounts %v", eng.Accounts())
	}
	if _, err := eng.HasRole("", EditorRole); !errors.Is(err, ErrEmptyAccount) {
		t.Fatalf("expected ErrEmptyAccount, got %v", err)
	}
	if _, err := eng.GetRoleMembers("MISSING"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestGuards(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob")

	if ok, err := eng.OnlyRole("bob", EditorRole); !ok || err != nil {
		t.Fatalf("expected bob to pass, got %v %v", ok, err)
	}
	ok, err := eng.OnlyRole("carol", EditorRole)
	if ok || !errors.Is(err, ErrLacksRole) || KindOf(err) != KindAuth {
		t.Fatalf("expected authorization failure, got %v %v", ok, err)
	}
	if ok, err := eng.OnlyRoleAdmin("alice", EditorRole); !ok || err != nil {
		t.Fatalf("expected alice to administer editor, got %v %v", ok, err)
	}
	if ok, err := eng.OnlyRoleAdmin("bob", EditorRole); ok || !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v %v", ok, err)
	}

	// Guards never mutate.
	if n := eng.CountEvents(nil); n != 4 {
		t.Fatalf("expected 4 events, got %d", n)
	}
}

func TestBulkGrantRole(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "dave")

	out, err := eng.BulkGrantRole(ctx, "alice", EditorRole, []string{"bob", "", "carol", "dave"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(out))
	}
	want := []bool{true, false, true, false}
	for i, o := range out {
		if o.Success != want[i] {
			t.Fatalf("outcome %d (%q): expected success=%v, got %+v", i, o.Account, want[i], o)
		}
	}
	if out[1].Kind != KindValidation {
		t.Fatalf("expected validation kind for empty account, got %s", out[1].Kind)
	}
	members, _ := eng.GetRoleMembers(EditorRole)
	if !slices.Equal(members, []string{"bob", "carol", "dave"}) {
		t.Fatalf("unexpected members %v", members)
	}

	out, err = eng.BulkRevokeRole(ctx, "alice", EditorRole, []string{"bob", "zed"})
	if err != nil {
		t.Fatal(err)
	}
	if !out[0].Success || out[1].Success || out[1].Kind != KindNotFound {
		t.Fatalf("unexpected revoke outcomes %+v", out)
	}
}

func TestBulkLimits(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, WithConfig(Config{MaxBulkSize: 2}))
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")

	if _, err := eng.BulkGrantRole(ctx, "alice", EditorRole, []string{"a", "b", "c"}); !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
	if _, err := eng.BulkGrantRole(ctx, "alice", EditorRole, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}
	if members, _ := eng.GetRoleMembers(EditorRole); len(members) != 0 {
		t.Fatalf("rejected batch must not grant, got %v", members)
	}
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng := newTestEngine(t, WithClock(func() time.Time { return fixed }))
	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob")
	_ = eng.RevokeRole(ctx, "alice", EditorRole, "bob")

	evs := eng.Events(&event.QueryFilter{Role: EditorRole})
	if len(evs) != 3 {
		t.Fatalf("expected 3 editor events, got %d", len(evs))
	}
	for _, e := range evs {
		if !e.Timestamp.Equal(fixed) {
			t.Fatalf("expected fixed timestamp, got %v", e.Timestamp)
		}
		if e.ID.IsNil() {
			t.Fatal("expected event id to be assigned")
		}
	}

	if _, err := eng.ClearEvents(ctx, "bob"); !errors.Is(err, ErrLacksRole) {
		t.Fatalf("expected ErrLacksRole, got %v", err)
	}
	n, err := eng.ClearEvents(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || eng.CountEvents(nil) != 0 {
		t.Fatalf("expected 5 cleared and none left, got %d and %d", n, eng.CountEvents(nil))
	}
}

func TestDisableEvents(t *testing.T) {
	eng := newTestEngine(t, WithConfig(Config{DisableEvents: true}))
	if n := eng.CountEvents(nil); n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
}

type countingPlugin struct {
	granted, revoked, renounced, created, adminChanged int
	owner                                              string
}

func (c *countingPlugin) Name() string { return "counting" }

func (c *countingPlugin) OnInitialized(_ context.Context, owner string) error {
	c.owner = owner
	return nil
}

func (c *countingPlugin) OnRoleCreated(_ context.Context, _ *role.Definition) error {
	c.created++
	return nil
}

func (c *countingPlugin) OnRoleGranted(_ context.Context, _ *event.Event) error {
	c.granted++
	return nil
}

func (c *countingPlugin) OnRoleRevoked(_ context.Context, _ *event.Event) error {
	c.revoked++
	return nil
}

func (c *countingPlugin) OnRoleRenounced(_ context.Context, _ *event.Event) error {
	c.renounced++
	return nil
}

func (c *countingPlugin) OnRoleAdminChanged(_ context.Context, _ *event.Event) error {
	c.adminChanged++
	return nil
}

func TestPluginHooks(t *testing.T) {
	ctx := context.Background()
	cp := &countingPlugin{}
	eng := newTestEngine(t, WithPlugin(cp))

	_ = eng.CreateRole(ctx, "alice", EditorRole, "")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "bob") // rejected, no hook
	_ = eng.RevokeRole(ctx, "alice", EditorRole, "bob")
	_ = eng.GrantRole(ctx, "alice", EditorRole, "carol")
	_ = eng.RenounceRole(ctx, "carol", EditorRole)
	_ = eng.SetRoleAdmin(ctx, "alice", EditorRole, RootRole)

	if cp.owner != "alice" {
		t.Fatalf("expected initialized hook with alice, got %q", cp.owner)
	}
	if cp.created != 2 || cp.granted != 3 || cp.revoked != 1 || cp.renounced != 1 || cp.adminChanged != 1 {
		t.Fatalf("unexpected hook counts %+v", cp)
	}
}

type failingGrantPlugin struct{}

func (failingGrantPlugin) Name() string { return "failing-grant" }

func (failingGrantPlugin) OnRoleGranted(context.Context, *event.Event) error {
	return errors.New("registry unreachable")
}

func TestPluginsUseFinalLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// WithLogger after WithPlugin must still reach the plugin registry.
	newTestEngine(t, WithPlugin(failingGrantPlugin{}), WithLogger(logger))

	if !strings.Contains(buf.String(), "plugin hook error") || !strings.Contains(buf.String(), "failing-grant") {
		t.Fatalf("expected hook error on the configured logger, got %q", buf.String())
	}
}

func TestSafe(t *testing.T) {
	res := Safe(func() (int, error) { return 42, nil })
	if !res.Success || res.Data != 42 {
		t.Fatalf("unexpected result %+v", res)
	}

	res = Safe(func() (int, error) { return 0, ErrMissingRole })
	if res.Success || res.Kind != KindNotFound || res.Error == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	res = Safe(func() (int, error) { panic("boom") })
	if res.Success || res.Kind != KindInternal {
		t.Fatalf("expected internal failure from panic, got %+v", res)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{ErrEmptyRole, KindValidation},
		{ErrRoleNotFound, KindNotFound},
		{ErrNotAdmin, KindAuth},
		{ErrLastRootHolder, KindInvariant},
		{errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
