package apicall

import (
	"context"
	"net/http"
	"sync"

	"github.com/samvad-hq/apicall/pkg/httpclient"
)

// stubResponse implements httpclient.Response.
type stubResponse struct {
	status int
	body   []byte
	header http.Header
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return s.header }

// stubTransport returns a fixed response or error and remembers the last request.
type stubTransport struct {
	mu    sync.Mutex
	resp  stubResponse
	err   error
	last  httpclient.Request
	calls int
	gate  chan struct{}
}

func (s *stubTransport) Execute(ctx context.Context, req httpclient.Request) (httpclient.Response, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = req
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}
