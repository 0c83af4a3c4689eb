package apicall

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/goleak"
)

func TestGoReturnsBeforeCompletion(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	transport := &stubTransport{
		resp: stubResponse{status: 200, body: []byte(`[1,2,3]`)},
		gate: make(chan struct{}),
	}
	client := New(transport)

	fut := client.Go(context.Background(), "/api/items", nil)
	select {
	case <-fut.Done():
		t.Fatalf("future completed before transport was released")
	default:
	}

	close(transport.gate)
	got, err := fut.Await()
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if !reflect.DeepEqual(got, []any{float64(1), float64(2), float64(3)}) {
		t.Fatalf("unexpected value %#v", got)
	}
}

func TestGoPropagatesFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	rec := &countingRecorder{}
	client := New(&stubTransport{resp: stubResponse{status: 503}}, WithRecorder(rec))

	_, err := client.Go(context.Background(), "/api/items", nil).Await()
	if code, ok := StatusCode(err); !ok || code != 503 {
		t.Fatalf("expected 503, got %v", err)
	}
	if len(rec.all()) != 1 {
		t.Fatalf("expected one recorded failure")
	}
}

func TestGoIssuesIndependentCalls(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	transport := &stubTransport{resp: stubResponse{status: 200, body: []byte(`{}`)}}
	client := New(transport)

	futures := make([]*Future, 4)
	for i := range futures {
		futures[i] = client.Go(context.Background(), "/same", nil)
	}
	for _, f := range futures {
		if _, err := f.Await(); err != nil {
			t.Fatalf("Await: %v", err)
		}
	}
	if transport.calls != 4 {
		t.Fatalf("expected 4 transport calls, got %d", transport.calls)
	}
}

func TestGoCopiesOptions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	transport := &stubTransport{
		resp: stubResponse{status: 200, body: []byte(`{}`)},
		gate: make(chan struct{}),
	}
	client := New(transport)

	opts := &Options{Headers: map[string]string{"X-Id": "first"}}
	fut := client.Go(context.Background(), "/x", opts)
	opts.Headers["X-Id"] = "second"
	close(transport.gate)

	if _, err := fut.Await(); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if got := transport.last.Headers["X-Id"]; got != "first" {
		t.Fatalf("in-flight call observed mutation: %q", got)
	}
}

func TestGoNetworkFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client := New(&stubTransport{err: errors.New("no route to host")})
	_, err := client.Go(context.Background(), "/x", nil).Await()
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
