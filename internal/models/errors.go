package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

var (
	// ErrAuth covers invalid credentials and expired or invalid tokens
	ErrAuth = errors.New("authentication failed")
	// ErrNetwork covers timeouts, aborts and connection failures
	ErrNetwork = errors.New("network error")
	// ErrTimeout is a network attempt that ran past its deadline
	ErrTimeout = fmt.Errorf("%w: request timed out", ErrNetwork)
	// ErrRateLimited is a provider 429 response
	ErrRateLimited = errors.New("rate limited")
	// ErrValidation blocks a submission locally before any network call
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is a stale id on update or delete
	ErrNotFound = errors.New("not found")
	// ErrNoSession is returned by mutations attempted without an active session
	ErrNoSession = errors.New("no active session")
	// ErrBusy rejects a search or import while another one is running
	ErrBusy = errors.New("operation already in progress")
	// ErrSuperseded marks a search replaced by a newer one
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrDetailsUnavailable means details could not be fetched; manual entry is still possible
	ErrDetailsUnavailable = errors.New("details could not be fetched")
)

// APIError is a non-2xx response from a collaborator
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Detail)
}

// Unwrap maps well-known status codes onto the error taxonomy
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// ProviderError is an error payload returned by the metadata provider
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// NetworkError classifies a failed round trip as ErrTimeout or ErrNetwork.
// A cancelled context is returned as is.
func NetworkError(ctx context.Context, err error) error {
	var urlErr *url.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
