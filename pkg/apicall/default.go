package apicall

import (
	"context"
	"sync"

	"github.com/samvad-hq/apicall/pkg/httpclient"
)

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Init registers c as the process-wide client. It must run before the first
// use of Default; afterwards it returns ErrAlreadyInitialized.
func Init(c *Client) error {
	if c == nil {
		return ErrNilClient
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient != nil {
		return ErrAlreadyInitialized
	}
	defaultClient = c
	return nil
}

// Default returns the process-wide client, building one on a plain resty
// transport if Init was never called.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(httpclient.NewRestyClient(httpclient.Config{}))
	}
	return defaultClient
}

// Call performs a call on the default client.
func Call(ctx context.Context, address string, opts *Options) (any, error) {
	return Default().Call(ctx, address, opts)
}

// CallInto performs a call on the default client and decodes into out.
func CallInto(ctx context.Context, address string, opts *Options, out any) error {
	return Default().CallInto(ctx, address, opts, out)
}

// Go starts an asynchronous call on the default client.
func Go(ctx context.Context, address string, opts *Options) *Future {
	return Default().Go(ctx, address, opts)
}
