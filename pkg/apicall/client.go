// Package apicall issues single-attempt HTTP calls that decode JSON responses
// and report every failure exactly once before returning it.
package apicall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/samvad-hq/apicall/pkg/httpclient"
)

// Client performs calls over an httpclient.Client transport.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	transport httpclient.Client
	recorder  Recorder
	log       Logger
	origin    *url.URL
}

// Option configures a Client.
type Option func(*Client)

// WithRecorder replaces the failure recorder. Nil keeps the current one.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger used for debug output and the default recorder.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithBaseURL sets the origin used to decide same-origin credentials.
// It should match the base URL the transport resolves relative addresses against.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base == "" {
			c.origin = nil
			return
		}
		if u, err := url.Parse(base); err == nil && u.Host != "" {
			c.origin = u
		}
	}
}

// New builds a Client. Failures are logged through the configured logger
// unless WithRecorder supplies a different sink.
func New(transport httpclient.Client, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		log:       noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recorder == nil {
		c.recorder = NewLogRecorder(c.log)
	}
	return c
}

// Call performs one request and returns the JSON-decoded body: map[string]any,
// []any, float64, string, bool, or nil for a JSON null.
func (c *Client) Call(ctx context.Context, address string, opts *Options) (any, error) {
	var out any
	if err := c.do(ctx, address, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CallInto performs one request and decodes the body into out, which must be a non-nil pointer.
func (c *Client) CallInto(ctx context.Context, address string, opts *Options, out any) error {
	return c.do(ctx, address, opts, out)
}

func (c *Client) do(ctx context.Context, address string, opts *Options, out any) error {
	started := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	address = strings.TrimSpace(address)

	o, err := opts.normalized()
	if err != nil {
		return c.fail(ctx, o.Method, address, started, fmt.Errorf("apicall: %w", err))
	}
	if address == "" {
		return c.fail(ctx, o.Method, address, started, ErrEmptyAddress)
	}
	if rv := reflect.ValueOf(out); !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return c.fail(ctx, o.Method, address, started, ErrNilTarget)
	}

	body, isJSON, err := encodeBody(o.Body)
	if err != nil {
		return c.fail(ctx, o.Method, address, started, fmt.Errorf("apicall: %w", err))
	}
	headers := o.Headers
	if isJSON {
		headers = withDefaultHeader(headers, "Content-Type", contentTypeJSON)
	}

	c.log.DebugObj("api call", "api_call", map[string]any{
		"method":      o.Method,
		"address":     address,
		"credentials": o.Credentials,
	})

	resp, err := c.transport.Execute(ctx, httpclient.Request{
		Method:         o.Method,
		URL:            address,
		Headers:        headers,
		Body:           body,
		IncludeCookies: c.includeCookies(address, o.Credentials),
		Extra:          o.Extra,
	})
	if err != nil {
		return c.fail(ctx, o.Method, address, started, &NetworkError{Method: o.Method, Address: address, Err: err})
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return c.fail(ctx, o.Method, address, started, &HTTPStatusError{
			Method:     o.Method,
			Address:    address,
			StatusCode: status,
			Snippet:    bodySnippet(resp.Header(), resp.Body()),
		})
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return c.fail(ctx, o.Method, address, started, &DecodeError{
			Method:     o.Method,
			Address:    address,
			StatusCode: status,
			Snippet:    bodySnippet(resp.Header(), resp.Body()),
			Err:        err,
		})
	}
	return nil
}

// fail records err once and hands it back unchanged.
func (c *Client) fail(ctx context.Context, method, address string, started time.Time, err error) error {
	c.recorder.Record(ctx, newFailure(method, address, err, started))
	return err
}

// includeCookies applies the credentials policy to address. Relative addresses
// are same-origin by construction.
func (c *Client) includeCookies(address string, creds Credentials) bool {
	switch creds {
	case CredentialsInclude:
		return true
	case CredentialsOmit:
		return false
	}

	u, err := url.Parse(address)
	if err != nil {
		return false
	}
	if !u.IsAbs() || u.Host == "" {
		return true
	}
	if c.origin == nil {
		return false
	}
	return strings.EqualFold(u.Scheme, c.origin.Scheme) && strings.EqualFold(u.Host, c.origin.Host)
}
