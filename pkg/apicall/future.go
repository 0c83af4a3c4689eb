package apicall

import "context"

// Future is the pending result of a call started with Go.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

// Go starts a call and returns immediately. The call is independent of every
// other call; identical addresses are not coalesced.
func (c *Client) Go(ctx context.Context, address string, opts *Options) *Future {
	f := &Future{done: make(chan struct{})}
	opts = opts.clone()
	go func() {
		defer close(f.done)
		f.value, f.err = c.Call(ctx, address, opts)
	}()
	return f
}

// Done is closed once the call has completed.
func (f *Future) Done() <-chan struct{} { return f.done }

// Await blocks until the call completes and returns its outcome.
func (f *Future) Await() (any, error) {
	<-f.done
	return f.value, f.err
}
