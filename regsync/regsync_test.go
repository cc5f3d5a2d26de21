package regsync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/xraph/quill"
	"github.com/xraph/quill/event"
	"github.com/xraph/quill/registry"
)

type sent struct {
	to, action string
	payload    json.RawMessage
}

type recordingSender struct {
	id   string
	sent []sent
	err  error
}

func (r *recordingSender) ID() string { return r.id }

func (r *recordingSender) Send(_ context.Context, to, action string, payload any) error {
	if r.err != nil {
		return r.err
	}
	raw, _ := json.Marshal(payload)
	r.sent = append(r.sent, sent{to: to, action: action, payload: raw})
	return nil
}

type mapSource map[string][]string

func (m mapSource) Snapshot(account string) []string { return m[account] }

func (m mapSource) Accounts() []string {
	out := make([]string, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	return out
}

func newTestSyncer(t *testing.T, src Source, sender *recordingSender) (*Syncer, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	return New(src, sender, WithMetrics(m)), m
}

func TestPushUpdateFiltersUntrackedRoles(t *testing.T) {
	sender := &recordingSender{id: "blog-1"}
	s, m := newTestSyncer(t, mapSource{"w1": {quill.RootRole, quill.EditorRole, "WRITER"}}, sender)

	require.NoError(t, s.OnRoleGranted(context.Background(), &event.Event{Account: "w1"}))
	require.Len(t, sender.sent, 1)
	require.Equal(t, DefaultRegistryID, sender.sent[0].to)
	require.Equal(t, registry.ActionUpdateWalletRoles, sender.sent[0].action)

	var req registry.RolesRequest
	require.NoError(t, json.Unmarshal(sender.sent[0].payload, &req))
	require.Equal(t, "w1", req.Wallet)
	require.Equal(t, []string{quill.RootRole, quill.EditorRole}, req.Roles)

	require.Equal(t, 1.0, testutil.ToFloat64(m.pushes.WithLabelValues(registry.ActionUpdateWalletRoles, OutcomeSent)))
}

func TestPushRemoveWhenNothingTracked(t *testing.T) {
	sender := &recordingSender{id: "blog-1"}
	s, _ := newTestSyncer(t, mapSource{"w1": {"WRITER"}}, sender)

	require.NoError(t, s.OnRoleRevoked(context.Background(), &event.Event{Account: "w1"}))
	require.NoError(t, s.OnRoleRenounced(context.Background(), &event.Event{Account: "w2"}))
	require.Len(t, sender.sent, 2)
	for _, msg := range sender.sent {
		require.Equal(t, registry.ActionRemoveWalletPermissions, msg.action)
	}

	var req registry.WalletRequest
	require.NoError(t, json.Unmarshal(sender.sent[1].payload, &req))
	require.Equal(t, "w2", req.Wallet)
}

func TestPushFailureIsSwallowedByHooks(t *testing.T) {
	sender := &recordingSender{id: "blog-1", err: errors.New("registry unreachable")}
	s, m := newTestSyncer(t, mapSource{"w1": {quill.EditorRole}}, sender)

	require.NoError(t, s.OnRoleGranted(context.Background(), &event.Event{Account: "w1"}))
	require.Error(t, s.Push(context.Background(), "w1"))
	require.Equal(t, 2.0, testutil.ToFloat64(m.pushes.WithLabelValues(registry.ActionUpdateWalletRoles, OutcomeFailed)))
}

func TestSyncFailureNeverFailsMutation(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{id: "blog-1", err: errors.New("registry unreachable")}
	syncer := New(nil, sender)
	eng, err := quill.NewEngine(quill.WithPlugin(syncer))
	require.NoError(t, err)
	syncer.SetSource(eng)

	require.NoError(t, eng.Initialize(ctx, "alice", "alice"))
	require.NoError(t, eng.CreateRole(ctx, "alice", quill.EditorRole, ""))
	require.NoError(t, eng.GrantRole(ctx, "alice", quill.EditorRole, "bob"))

	ok, err := eng.HasRole("bob", quill.EditorRole)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEngineMutationsPushFullSnapshots(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{id: "blog-1"}
	syncer := New(nil, sender)
	eng, err := quill.NewEngine(quill.WithPlugin(syncer))
	require.NoError(t, err)
	syncer.SetSource(eng)

	require.NoError(t, eng.Initialize(ctx, "alice", "alice"))
	require.NoError(t, eng.CreateRole(ctx, "alice", quill.EditorRole, ""))
	require.NoError(t, eng.GrantRole(ctx, "alice", quill.EditorRole, "alice"))
	require.NoError(t, eng.RevokeRole(ctx, "alice", quill.EditorRole, "alice"))

	// init grant, editor grant, editor revoke
	require.Len(t, sender.sent, 3)
	var last registry.RolesRequest
	require.NoError(t, json.Unmarshal(sender.sent[2].payload, &last))
	require.Equal(t, registry.ActionUpdateWalletRoles, sender.sent[2].action)
	require.Equal(t, []string{quill.RootRole}, last.Roles)

	var mid registry.RolesRequest
	require.NoError(t, json.Unmarshal(sender.sent[1].payload, &mid))
	require.Equal(t, []string{quill.RootRole, quill.EditorRole}, mid.Roles)
}

func TestResyncAll(t *testing.T) {
	sender := &recordingSender{id: "blog-1"}
	s, m := newTestSyncer(t, mapSource{
		"w1": {quill.RootRole},
		"w2": {quill.EditorRole},
		"w3": {"WRITER"},
	}, sender)

	n, err := s.ResyncAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, sender.sent, 3)
	require.Equal(t, 1.0, testutil.ToFloat64(m.resyncs))

	sender.err = errors.New("down")
	n, err = s.ResyncAll(context.Background())
	require.Error(t, err)
	require.Zero(t, n)
}

func TestSchedule(t *testing.T) {
	s := New(mapSource{}, &recordingSender{id: "blog-1"})
	require.Error(t, s.Schedule("not a cron spec"))
	require.NoError(t, s.Schedule("@every 1h"))
	s.Start()
	require.NoError(t, s.OnShutdown(context.Background()))
}

func TestTracked(t *testing.T) {
	require.Equal(t, []string{quill.EditorRole}, Tracked([]string{"A", quill.EditorRole, "B"}))
	require.Empty(t, Tracked(nil))
}
