package reporters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/apicall/pkg/httpclient"
)

const (
	attributeHeaderPrefix = "X-Apicall-"
	maxRejectionExcerpt   = 512
)

// webhookPublisher posts each failure event as JSON. The event attributes are
// repeated as X-Apicall-* headers and the failure id doubles as an
// Idempotency-Key so receivers can route and dedupe without parsing the body.
type webhookPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg ReporterConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("reporter %q missing http configuration", cfg.ID)
	}
	method := cfg.HTTP.Method
	if method == "" {
		method = httpDefaultMethod
	}

	return &webhookPublisher{
		id:      cfg.ID,
		method:  method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeaders(w.headers).
		SetHeaders(failureHeaders(evt)).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Execute(w.method, w.url)
	if err != nil {
		w.log.ErrorObj("webhook reporter send failed", "reporter_http_error", map[string]any{
			"reporter_id": w.id,
			"failure_id":  evt.Failure.ID,
			"error":       err.Error(),
		})
		return fmt.Errorf("deliver failure %s: %w", evt.Failure.ID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook rejected failure %s with status %d: %s",
			evt.Failure.ID, resp.StatusCode(), rejectionExcerpt(resp.Body()))
	}

	w.log.DebugObj("webhook reporter delivered event", "reporter_http_delivery", map[string]any{
		"reporter_id": w.id,
		"failure_id":  evt.Failure.ID,
		"status":      resp.StatusCode(),
	})
	return nil
}

// failureHeaders maps event attributes to headers, e.g. failure_id -> X-Apicall-Failure-Id.
func failureHeaders(evt Event) map[string]string {
	attrs := evt.attributes()
	out := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		if v == "" {
			continue
		}
		out[http.CanonicalHeaderKey(attributeHeaderPrefix+strings.ReplaceAll(k, "_", "-"))] = v
	}
	if evt.Failure.ID != "" {
		out["Idempotency-Key"] = evt.Failure.ID
	}
	return out
}

func rejectionExcerpt(body []byte) string {
	if len(body) > maxRejectionExcerpt {
		body = body[:maxRejectionExcerpt]
	}
	return strings.TrimSpace(string(body))
}
