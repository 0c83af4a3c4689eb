package httpclient

import (
	"context"
	"net/http"
)

// Request describes a single outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
	// IncludeCookies selects the cookie-jar backed client.
	IncludeCookies bool
	// Extra carries caller options the transport does not interpret.
	Extra map[string]any
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Execute(ctx context.Context, req Request) (Response, error)
}

type extraKey struct{}

// WithExtra stores pass-through options on ctx.
func WithExtra(ctx context.Context, extra map[string]any) context.Context {
	if len(extra) == 0 {
		return ctx
	}
	return context.WithValue(ctx, extraKey{}, extra)
}

// ExtraFromContext returns the pass-through options attached by WithExtra, if any.
// Custom round trippers read them from the outgoing request's context.
func ExtraFromContext(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	extra, _ := ctx.Value(extraKey{}).(map[string]any)
	return extra
}
