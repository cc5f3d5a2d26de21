package asynqbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/xraph/quill/bus"
)

type fakeClient struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type recordingMailbox struct{ got []*bus.Envelope }

func (r *recordingMailbox) Deliver(env *bus.Envelope) error {
	r.got = append(r.got, env)
	return nil
}

func (r *recordingMailbox) Ask(context.Context, *bus.Envelope) (json.RawMessage, error) {
	return nil, nil
}

func TestTransportRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	ep := bus.NewEndpoint("blog-1", NewTransport(client, ""))

	if err := ep.Send(ctx, "registry", "Remove-Wallet-Permissions", map[string]string{"wallet": "w1"}); err != nil {
		t.Fatal(err)
	}
	if len(client.tasks) != 1 || client.tasks[0].Type() != TypeEnvelope {
		t.Fatalf("unexpected tasks %+v", client.tasks)
	}

	local := bus.NewLocal()
	mb := &recordingMailbox{}
	local.Register("registry", mb)

	if err := Handler(local, nil)(ctx, client.tasks[0]); err != nil {
		t.Fatal(err)
	}
	if len(mb.got) != 1 {
		t.Fatalf("expected 1 delivered envelope, got %d", len(mb.got))
	}
	got := mb.got[0]
	if got.From != "blog-1" || got.Action != "Remove-Wallet-Permissions" {
		t.Fatalf("unexpected envelope %+v", got)
	}
}

func TestTransportEnqueueError(t *testing.T) {
	tr := NewTransport(&fakeClient{err: errors.New("redis down")}, "q")
	env, _ := bus.NewEnvelope("blog-1", "registry", "Info", nil)
	if err := tr.Deliver(context.Background(), env); err == nil {
		t.Fatal("expected enqueue error")
	}
}

func TestTransportRequestUnsupported(t *testing.T) {
	tr := NewTransport(&fakeClient{}, "")
	env, _ := bus.NewEnvelope("blog-1", "registry", "Info", nil)
	if _, err := tr.Request(context.Background(), env); !errors.Is(err, bus.ErrRequestUnsupported) {
		t.Fatalf("expected ErrRequestUnsupported, got %v", err)
	}
}

func TestHandlerSkipsRetryOnBadInput(t *testing.T) {
	ctx := context.Background()
	h := Handler(bus.NewLocal(), nil)

	if err := h(ctx, asynq.NewTask(TypeEnvelope, []byte("{"))); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for malformed payload, got %v", err)
	}

	incomplete, _ := json.Marshal(bus.Envelope{To: "registry", Action: "Info"})
	if err := h(ctx, asynq.NewTask(TypeEnvelope, incomplete)); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for missing sender, got %v", err)
	}

	env, _ := bus.NewEnvelope("blog-1", "nowhere", "Info", nil)
	task, _ := NewEnvelopeTask(env)
	if err := h(ctx, task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for unknown process, got %v", err)
	}
}
