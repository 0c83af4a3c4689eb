package batch

import (
	"context"

	"github.com/samvad-hq/apicall/pkg/apicall"
)

// Caller performs a single call. *apicall.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, address string, opts *apicall.Options) (any, error)
}
