package apicall

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a failed call.
type Kind string

const (
	KindNetwork        Kind = "network"
	KindHTTPStatus     Kind = "http_status"
	KindDecode         Kind = "decode"
	KindInvalidRequest Kind = "invalid_request"
)

// Failure is the diagnostic record emitted for every failed call.
type Failure struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Method     string    `json:"method"`
	Address    string    `json:"address"`
	StatusCode int       `json:"status_code,omitempty"`
	Snippet    string    `json:"snippet,omitempty"`
	Error      string    `json:"error"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recorder receives exactly one Failure per failed call.
type Recorder interface {
	Record(ctx context.Context, f Failure)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, f Failure)

func (fn RecorderFunc) Record(ctx context.Context, f Failure) { fn(ctx, f) }

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

// LogRecorder writes failures to a Logger at error level.
type LogRecorder struct {
	log Logger
}

// NewLogRecorder returns a Recorder backed by log.
func NewLogRecorder(log Logger) *LogRecorder {
	return &LogRecorder{log: ensureLogger(log)}
}

func (r *LogRecorder) Record(_ context.Context, f Failure) {
	r.log.ErrorObj("api call failed", "api_call_failure", f)
}

// newFailure derives the diagnostic record from the error being returned to the caller.
func newFailure(method, address string, err error, started time.Time) Failure {
	f := Failure{
		ID:         uuid.NewString(),
		Kind:       KindInvalidRequest,
		Method:     method,
		Address:    address,
		Error:      err.Error(),
		ElapsedMs:  time.Since(started).Milliseconds(),
		OccurredAt: time.Now().UTC(),
	}

	var (
		netErr    *NetworkError
		statusErr *HTTPStatusError
		decodeErr *DecodeError
	)
	switch {
	case errors.As(err, &netErr):
		f.Kind = KindNetwork
	case errors.As(err, &statusErr):
		f.Kind = KindHTTPStatus
		f.StatusCode = statusErr.StatusCode
		f.Snippet = statusErr.Snippet
	case errors.As(err, &decodeErr):
		f.Kind = KindDecode
		f.StatusCode = decodeErr.StatusCode
		f.Snippet = decodeErr.Snippet
	}
	return f
}
