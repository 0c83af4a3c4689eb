package apicall

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
)

const contentTypeJSON = "application/json"

// Credentials controls whether the cookie jar participates in a call.
type Credentials string

const (
	CredentialsOmit       Credentials = "omit"
	CredentialsSameOrigin Credentials = "same-origin"
	CredentialsInclude    Credentials = "include"
)

// ParseCredentials normalizes a policy name. Empty input yields same-origin.
func ParseCredentials(s string) (Credentials, error) {
	switch c := Credentials(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CredentialsSameOrigin, nil
	case CredentialsOmit, CredentialsSameOrigin, CredentialsInclude:
		return c, nil
	default:
		return "", fmt.Errorf("unknown credentials policy %q", s)
	}
}

// Options shapes a single call. A nil *Options means GET with no custom headers and no body.
type Options struct {
	Method  string
	Headers map[string]string
	// Body is sent as-is for []byte, string and io.Reader; other values are JSON-encoded.
	Body        any
	Credentials Credentials
	// Extra holds options this package does not interpret. They reach the transport
	// unvalidated via httpclient.ExtraFromContext.
	Extra map[string]any
}

// clone copies opts so a call in flight never observes later caller mutation.
func (o *Options) clone() *Options {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Headers = maps.Clone(o.Headers)
	cp.Extra = maps.Clone(o.Extra)
	return &cp
}

// normalized returns the effective options with defaults applied.
func (o *Options) normalized() (Options, error) {
	var out Options
	if o != nil {
		out = *o
	}

	out.Method = strings.ToUpper(strings.TrimSpace(out.Method))
	if out.Method == "" {
		out.Method = http.MethodGet
	}

	creds, err := ParseCredentials(string(out.Credentials))
	if err != nil {
		return out, err
	}
	out.Credentials = creds

	if len(out.Headers) == 0 {
		out.Headers = nil
	}
	return out, nil
}

// encodeBody returns the wire form of body. []byte, string and io.Reader pass
// through untouched; every other value, scalars included, is JSON-encoded and
// reported as such.
func encodeBody(body any) (wire any, isJSON bool, err error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte, string, io.Reader:
		return b, false, nil
	case json.RawMessage:
		return []byte(b), true, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, false, fmt.Errorf("encode body: %w", err)
	}
	return raw, true, nil
}

// withDefaultHeader returns headers with key set to value unless the caller
// already set it under any casing. The input map is never modified.
func withDefaultHeader(headers map[string]string, key, value string) map[string]string {
	for k := range headers {
		if strings.EqualFold(k, key) {
			return headers
		}
	}
	out := make(map[string]string, len(headers)+1)
	maps.Copy(out, headers)
	out[key] = value
	return out
}
