package apicall

import (
	"context"
	"errors"
	"testing"
)

func resetDefault(t *testing.T) {
	t.Helper()
	defaultMu.Lock()
	defaultClient = nil
	defaultMu.Unlock()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultClient = nil
		defaultMu.Unlock()
	})
}

func TestInitRegistersSingleton(t *testing.T) {
	resetDefault(t)

	transport := &stubTransport{resp: stubResponse{status: 200, body: []byte(`{"a":1}`)}}
	client := New(transport)
	if err := Init(client); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Default() != client {
		t.Fatalf("Default did not return the registered client")
	}
	if err := Init(New(transport)); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	got, err := Call(context.Background(), "/a", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.(map[string]any)["a"] != float64(1) {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestDefaultIsLazyAndStable(t *testing.T) {
	resetDefault(t)

	first := Default()
	if first == nil || Default() != first {
		t.Fatalf("Default should build once and return the same client")
	}
	if err := Init(New(&stubTransport{})); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("Init after Default should fail, got %v", err)
	}
}

func TestInitRejectsNil(t *testing.T) {
	resetDefault(t)
	if err := Init(nil); !errors.Is(err, ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}
