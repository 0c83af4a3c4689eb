package apicall

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAddress is returned when a call is made without an address.
	ErrEmptyAddress = errors.New("apicall: address is empty")
	// ErrNilTarget is returned by CallInto when out is not a non-nil pointer.
	ErrNilTarget = errors.New("apicall: decode target must be a non-nil pointer")
	// ErrNilClient is returned by Init when given a nil client.
	ErrNilClient = errors.New("apicall: client is nil")
	// ErrAlreadyInitialized is returned by Init once the default client exists.
	ErrAlreadyInitialized = errors.New("apicall: default client already initialized")
)

// NetworkError reports that the transport could not complete the request.
type NetworkError struct {
	Method  string
	Address string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Address, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a response whose status is outside 200-299.
type HTTPStatusError struct {
	Method     string
	Address    string
	StatusCode int
	Snippet    string
}

func (e *HTTPStatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("http status %d: %s %s", e.StatusCode, e.Method, e.Address)
	}
	return fmt.Sprintf("http status %d: %s %s: %s", e.StatusCode, e.Method, e.Address, e.Snippet)
}

// DecodeError reports a successful response whose body is not valid JSON.
type DecodeError struct {
	Method     string
	Address    string
	StatusCode int
	Snippet    string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %s %s (status %d): %v", e.Method, e.Address, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}
