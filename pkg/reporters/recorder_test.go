package reporters

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/apicall/internal/logger"
	"github.com/samvad-hq/apicall/pkg/apicall"
	"github.com/samvad-hq/apicall/pkg/httpclient"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorderLogsOnceAndFansOut(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sink := &stubPublisher{id: "s", typ: "http"}
	rec := NewRecorder(logger.New(zap.New(core)), NewFanout([]Publisher{sink}), "apicall", "test")

	rec.Record(context.Background(), apicall.Failure{ID: "f", Kind: apicall.KindNetwork})

	if n := logs.FilterMessage("api call failed").Len(); n != 1 {
		t.Fatalf("expected one diagnostic log, got %d", n)
	}
	if sink.calls != 1 {
		t.Fatalf("expected one sink delivery, got %d", sink.calls)
	}
}

func TestRecorderDeliversAfterCallerCancel(t *testing.T) {
	sink := &ctxCheckingPublisher{}
	rec := NewRecorder(nil, NewFanout([]Publisher{sink}), "apicall", "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, apicall.Failure{ID: "f"})

	if sink.sawCancelled {
		t.Fatalf("delivery context inherited caller cancellation")
	}
}

func TestRecorderWarnsOnSinkFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sink := &stubPublisher{id: "s", typ: "http", err: errors.New("down")}
	rec := NewRecorder(logger.New(zap.New(core)), NewFanout([]Publisher{sink}), "apicall", "test")

	rec.Record(context.Background(), apicall.Failure{ID: "f"})

	if n := logs.FilterMessage("diagnostic delivery failed").Len(); n != 1 {
		t.Fatalf("expected delivery warning, got %d", n)
	}
}

func TestRecorderInstalledOnClient(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rec := NewRecorder(logger.New(zap.New(core)), nil, "apicall", "test")
	client := apicall.New(failingTransport{}, apicall.WithRecorder(rec))

	if _, err := client.Call(context.Background(), "https://api.example.com", nil); err == nil {
		t.Fatalf("expected error")
	}
	if n := logs.FilterMessage("api call failed").Len(); n != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", n)
	}
}

type ctxCheckingPublisher struct {
	sawCancelled bool
}

func (c *ctxCheckingPublisher) ID() string   { return "ctx" }
func (c *ctxCheckingPublisher) Type() string { return "test" }
func (c *ctxCheckingPublisher) Publish(ctx context.Context, _ Event) error {
	c.sawCancelled = ctx.Err() != nil
	return nil
}

type failingTransport struct{}

func (failingTransport) Execute(context.Context, httpclient.Request) (httpclient.Response, error) {
	return nil, errors.New("connection refused")
}
