package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/apicall/internal/logger"
	"github.com/samvad-hq/apicall/pkg/endpoints"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Result is the outcome of one endpoint call.
type Result struct {
	EndpointID string        `json:"endpoint_id"`
	Value      any           `json:"value,omitempty"`
	Err        error         `json:"-"`
	Elapsed    time.Duration `json:"-"`
}

// Service runs a set of endpoints, each as an independent call.
type Service struct {
	caller      Caller
	concurrency int
	log         logger.Logger
}

// NewService wires a batch runner around caller.
func NewService(caller Caller, concurrency int, log logger.Logger) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		caller:      caller,
		concurrency: concurrency,
		log:         log,
	}
}

// Run calls every endpoint once. Results keep the order of eps; a failing
// endpoint never stops the others.
func (s *Service) Run(ctx context.Context, eps []endpoints.Endpoint) ([]Result, error) {
	if s == nil || s.caller == nil {
		return nil, fmt.Errorf("batch service is not initialized")
	}
	if len(eps) == 0 {
		return nil, fmt.Errorf("no endpoints configured for batch")
	}

	results := make([]Result, len(eps))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ep := range eps {
		g.Go(func() error {
			results[i] = s.runEndpoint(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("endpoint %s: %w", r.EndpointID, r.Err))
		}
	}

	s.log.InfoObj("batch completed", "batch_result", map[string]any{
		"endpoints": len(eps),
		"failed":    len(errs),
	})
	return results, errors.Join(errs...)
}

func (s *Service) runEndpoint(ctx context.Context, ep endpoints.Endpoint) Result {
	start := time.Now()
	value, err := s.caller.Call(ctx, ep.URL, ep.Options())
	res := Result{
		EndpointID: ep.ID,
		Value:      value,
		Err:        err,
		Elapsed:    time.Since(start),
	}
	if err == nil {
		s.log.DebugObj("endpoint call completed", "endpoint_result", map[string]any{
			"endpoint_id": ep.ID,
			"elapsed_ms":  res.Elapsed.Milliseconds(),
		})
	}
	return res
}
