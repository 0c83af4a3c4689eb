package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/samvad-hq/apicall/internal/batch"
	"github.com/samvad-hq/apicall/internal/config"
	"github.com/samvad-hq/apicall/internal/logger"
	"github.com/samvad-hq/apicall/internal/storage"
	"github.com/samvad-hq/apicall/pkg/apicall"
	"github.com/samvad-hq/apicall/pkg/endpoints"
	"github.com/samvad-hq/apicall/pkg/httpclient"
	"github.com/samvad-hq/apicall/pkg/reporters"
)

// Runtime owns everything a call needs: the cookie store, the transport,
// the diagnostic sinks and the endpoint registry.
type Runtime struct {
	cfg       *config.Config
	client    *apicall.Client
	endpoints *endpoints.Registry
	batch     *batch.Service
	fanout    *reporters.Fanout
	store     storage.Store
	log       logger.Logger
}

// NewRuntime builds a runtime from config and registers its client as the
// process-wide default.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	storeOpts := storage.Options{
		TTL:             cfg.CookieTTL,
		CleanupInterval: cfg.CookieCleanupInterval,
	}
	store, err := storage.NewStore(cfg.CookieStoreType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init cookie store: %w", err)
	}
	log.InfoObj("cookie store initialized", "cookie_store", map[string]any{
		"type":                     cfg.CookieStoreType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.CookieTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.CookieCleanupInterval.Seconds()),
	})

	jar, err := storage.NewJar(store, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	endpointReg, err := loadEndpoints(cfg, log)
	if err != nil {
		fanout.Close()
		store.Close()
		return nil, err
	}

	httpCfg := httpclient.Config{
		Timeout:   cfg.HTTPTimeout,
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Jar:       jar,
	}
	if logger.S != nil {
		httpCfg.Logger = logger.S
	}

	client := apicall.New(
		httpclient.NewRestyClient(httpCfg),
		apicall.WithLogger(log),
		apicall.WithRecorder(reporters.NewRecorder(log, fanout, cfg.AppName, cfg.Env)),
		apicall.WithBaseURL(cfg.BaseURL),
	)
	if err := apicall.Init(client); err != nil {
		if !errors.Is(err, apicall.ErrAlreadyInitialized) {
			fanout.Close()
			store.Close()
			return nil, fmt.Errorf("register default client: %w", err)
		}
		log.WarnObj("default client already registered", "base_url", cfg.BaseURL)
	}

	return &Runtime{
		cfg:       cfg,
		client:    client,
		endpoints: endpointReg,
		batch:     batch.NewService(client, cfg.BatchConcurrency, log),
		fanout:    fanout,
		store:     store,
		log:       log,
	}, nil
}

// buildFanout loads the reporters file. No file means failures are only logged.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*reporters.Fanout, error) {
	if strings.TrimSpace(cfg.ReportersFile) == "" {
		return reporters.NewFanout(nil), nil
	}

	reg, err := reporters.LoadRegistry(cfg.ReportersFile)
	if err != nil {
		return nil, fmt.Errorf("load reporters registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, r := range enabled {
		summaries = append(summaries, map[string]string{"id": r.ID, "type": r.Type})
	}
	log.InfoObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})
	return reporters.NewFanout(pubs), nil
}

// loadEndpoints reads the endpoints file. A missing file yields an empty registry.
func loadEndpoints(cfg *config.Config, log logger.Logger) (*endpoints.Registry, error) {
	path := strings.TrimSpace(cfg.EndpointsFile)
	if path == "" {
		return endpoints.NewRegistry(nil)
	}

	reg, err := endpoints.LoadRegistry(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WarnObj("endpoints file not found; named endpoints disabled", "endpoints_file", path)
		return endpoints.NewRegistry(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load endpoints registry: %w", err)
	}

	all := reg.All()
	ids := make([]string, 0, len(all))
	for _, ep := range all {
		ids = append(ids, ep.ID)
	}
	log.InfoObj("endpoints registry loaded", "endpoints_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
	})
	return reg, nil
}

// Client returns the runtime's call client.
func (r *Runtime) Client() *apicall.Client { return r.client }

// Endpoints returns every configured endpoint.
func (r *Runtime) Endpoints() []endpoints.Endpoint { return r.endpoints.All() }

// Call performs a single call against address.
func (r *Runtime) Call(ctx context.Context, address string, opts *apicall.Options) (any, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	return r.client.Call(ctx, address, opts)
}

// CallEndpoint performs the named endpoint's call. Non-nil overrides replace
// the endpoint's method and body and are merged into its headers.
func (r *Runtime) CallEndpoint(ctx context.Context, id string, override *apicall.Options) (any, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	ep, ok := r.endpoints.ByID(id)
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %q", id)
	}
	return r.client.Call(ctx, ep.URL, mergeOptions(ep.Options(), override))
}

// RunBatch calls every enabled endpoint once.
func (r *Runtime) RunBatch(ctx context.Context) ([]batch.Result, error) {
	if r == nil || r.batch == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	return r.batch.Run(ctx, r.endpoints.Enabled())
}

// Close releases the sinks and the cookie store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.fanout != nil {
		if err := r.fanout.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close reporters: %w", err))
		}
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cookie store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func mergeOptions(base, override *apicall.Options) *apicall.Options {
	if override == nil {
		return base
	}
	if override.Method != "" {
		base.Method = override.Method
	}
	if override.Body != nil {
		base.Body = override.Body
	}
	if override.Credentials != "" {
		base.Credentials = override.Credentials
	}
	for k, v := range override.Headers {
		if base.Headers == nil {
			base.Headers = make(map[string]string, len(override.Headers))
		}
		base.Headers[k] = v
	}
	for k, v := range override.Extra {
		if base.Extra == nil {
			base.Extra = make(map[string]any, len(override.Extra))
		}
		base.Extra[k] = v
	}
	return base
}
