package reporters

import (
	"context"
	"time"

	"github.com/samvad-hq/apicall/pkg/apicall"
)

const defaultDeliveryTimeout = 5 * time.Second

// Recorder logs each failed call once and forwards it to every configured sink.
// Sink errors are logged and never reach the caller of the failed call.
type Recorder struct {
	log     Logger
	fanout  *Fanout
	app     string
	env     string
	timeout time.Duration
}

// NewRecorder builds a Recorder. A nil or empty fanout makes it log-only.
func NewRecorder(log Logger, fanout *Fanout, app, env string) *Recorder {
	return &Recorder{
		log:     ensureLogger(log),
		fanout:  fanout,
		app:     app,
		env:     env,
		timeout: defaultDeliveryTimeout,
	}
}

var _ apicall.Recorder = (*Recorder)(nil)

// Record implements apicall.Recorder.
func (r *Recorder) Record(ctx context.Context, f apicall.Failure) {
	r.log.ErrorObj("api call failed", "api_call_failure", f)

	if r.fanout.Size() == 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// The failed call's context may already be cancelled.
	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	delivered, err := r.fanout.Publish(deliverCtx, NewEvent(r.app, r.env, f))
	if err != nil {
		r.log.WarnObj("diagnostic delivery failed", "reporter_error", map[string]any{
			"failure_id": f.ID,
			"delivered":  delivered,
			"sinks":      r.fanout.Size(),
			"error":      err.Error(),
		})
	}
}
