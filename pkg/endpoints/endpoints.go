// Package endpoints loads named calls from YAML/JSON files.
package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samvad-hq/apicall/pkg/apicall"
	"gopkg.in/yaml.v3"
)

// Endpoint is a named, preconfigured call.
type Endpoint struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	URL         string            `json:"url" yaml:"url"`
	Method      string            `json:"method" yaml:"method"`
	Headers     map[string]string `json:"headers" yaml:"headers"`
	Body        any               `json:"body" yaml:"body"`
	Credentials string            `json:"credentials" yaml:"credentials"`
	Extra       map[string]any    `json:"extra" yaml:"extra"`
	Enabled     *bool             `json:"enabled" yaml:"enabled"`
}

type configFile struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// Registry holds endpoint definitions loaded from a config file.
type Registry struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	idx       map[string]Endpoint
}

// LoadRegistry loads the endpoints registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("endpoints file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoints file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	parsed, err := parseEndpoints(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Endpoints)
}

// NewRegistry validates eps and indexes them by id.
func NewRegistry(eps []Endpoint) (*Registry, error) {
	reg := &Registry{
		endpoints: make([]Endpoint, len(eps)),
		idx:       make(map[string]Endpoint, len(eps)),
	}
	for i := range eps {
		ep := sanitizeEndpoint(eps[i])
		if err := validateEndpoint(ep); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		if _, exists := reg.idx[ep.ID]; exists {
			return nil, fmt.Errorf("duplicate endpoint id %q", ep.ID)
		}
		reg.endpoints[i] = ep
		reg.idx[ep.ID] = ep
	}
	return reg, nil
}

func parseEndpoints(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cfg configFile
		if err := d.fn(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	return configFile{}, errors.New("endpoints file format not recognized (expected YAML or JSON)")
}

func sanitizeEndpoint(ep Endpoint) Endpoint {
	ep.ID = strings.TrimSpace(ep.ID)
	ep.Name = strings.TrimSpace(ep.Name)
	ep.URL = strings.TrimSpace(ep.URL)
	ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
	if ep.Method == "" {
		ep.Method = http.MethodGet
	}
	ep.Credentials = strings.ToLower(strings.TrimSpace(ep.Credentials))
	if ep.Credentials == "" {
		ep.Credentials = string(apicall.CredentialsSameOrigin)
	}
	ep.Headers = sanitizeHeaders(ep.Headers)
	if ep.Enabled == nil {
		def := true
		ep.Enabled = &def
	}
	return ep
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateEndpoint(ep Endpoint) error {
	if ep.ID == "" {
		return errors.New("id is required")
	}
	if ep.URL == "" {
		return fmt.Errorf("url is required for endpoint %q", ep.ID)
	}
	if _, err := apicall.ParseCredentials(ep.Credentials); err != nil {
		return fmt.Errorf("endpoint %q: %w", ep.ID, err)
	}
	return nil
}

// ByID returns the endpoint by id.
func (r *Registry) ByID(id string) (Endpoint, bool) {
	if r == nil {
		return Endpoint{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Endpoint{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.idx[id]
	return ep, ok
}

// All returns every configured endpoint in file order.
func (r *Registry) All() []Endpoint {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Enabled returns endpoints that are enabled.
func (r *Registry) Enabled() []Endpoint {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Endpoint, 0, len(all))
	for _, ep := range all {
		if ep.EnabledValue() {
			out = append(out, ep)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (ep Endpoint) EnabledValue() bool {
	if ep.Enabled == nil {
		return true
	}
	return *ep.Enabled
}

// Options converts the endpoint into call options.
func (ep Endpoint) Options() *apicall.Options {
	creds, err := apicall.ParseCredentials(ep.Credentials)
	if err != nil {
		creds = apicall.Credentials(ep.Credentials)
	}
	return &apicall.Options{
		Method:      ep.Method,
		Headers:     maps.Clone(ep.Headers),
		Body:        ep.Body,
		Credentials: creds,
		Extra:       maps.Clone(ep.Extra),
	}
}
