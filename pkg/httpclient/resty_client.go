package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Logger is the printf-style surface resty logs through. *zap.SugaredLogger satisfies it.
type Logger interface {
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// Config shapes the resty clients.
type Config struct {
	// Timeout of zero leaves requests without a client-side deadline.
	Timeout   time.Duration
	BaseURL   string
	UserAgent string
	// Jar is consulted only for requests with IncludeCookies set.
	Jar       http.CookieJar
	Transport http.RoundTripper
	Logger    Logger
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	withCookies    *resty.Client
	withoutCookies *resty.Client
}

// NewRestyClient creates a RestyClient. Both underlying clients share one transport
// so connection reuse is unaffected by the cookie policy.
func NewRestyClient(cfg Config) *RestyClient {
	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}
	return &RestyClient{
		withCookies:    newRestyBaseClient(cfg, rt, cfg.Jar),
		withoutCookies: newRestyBaseClient(cfg, rt, nil),
	}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(Config{Timeout: timeout}, nil, nil)
}

// newRestyBaseClient creates a resty.Client without retries.
func newRestyBaseClient(cfg Config, rt http.RoundTripper, jar http.CookieJar) *resty.Client {
	c := resty.NewWithClient(&http.Client{Transport: rt, Jar: jar})
	c.SetTimeout(cfg.Timeout)
	c.SetRetryCount(0)
	c.SetAllowGetMethodPayload(true)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		c.SetBaseURL(base)
	}
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	if cfg.Logger != nil {
		c.SetLogger(cfg.Logger)
	}
	return c
}

// Execute performs the request with the specified context.
func (r *RestyClient) Execute(ctx context.Context, in Request) (Response, error) {
	client := r.withoutCookies
	if in.IncludeCookies {
		client = r.withCookies
	}

	req := client.R().SetContext(WithExtra(ctx, in.Extra))
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}
	if in.Body != nil {
		req.SetBody(in.Body)
	}

	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	resp, err := req.Execute(method, in.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
