package heroes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShapeMismatch is wrapped by ShapeError.
	ErrShapeMismatch = errors.New("heroes: record shape does not match provider")

	// ErrMalformedResponse is returned when an upstream body cannot be decoded.
	ErrMalformedResponse = errors.New("heroes: malformed upstream response")

	// ErrEmptyID is returned by GetHeroByID for a blank id, before any request.
	ErrEmptyID = errors.New("heroes: hero id is required")
)

// ConfigurationError reports a setup problem: missing base URL, unknown
// provider, or remote search requested without a token. Never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "heroes: configuration: " + e.Reason
}

// TransportError is a non-2xx HTTP response or a network failure.
// Status is 0 when no response was received.
type TransportError struct {
	Status     int
	StatusText string
	URL        string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed (%s): %v", e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP %d %s (%s)", e.Status, e.StatusText, e.URL)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is an explicit {"response":"error"} envelope from the token provider.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string { return e.Message }

// NotFound reports whether the envelope names a missing hero ("invalid id",
// "character with given name not found") rather than a refused request.
func (e *UpstreamError) NotFound() bool {
	msg := strings.ToLower(strings.TrimSpace(e.Message))
	return msg == "invalid id" || strings.Contains(msg, "not found")
}

// ShapeError reports a record whose id type does not match the configured provider.
type ShapeError struct {
	Provider Provider
	Got      Shape
	Index    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("heroes: record %d has %s shape, provider %s expects %s",
		e.Index, e.Got, e.Provider, e.Provider.Shape())
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// IsNotFound reports whether err means the requested hero does not exist
// upstream: a not-found error envelope or an HTTP 404.
func IsNotFound(err error) bool {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.NotFound()
	}
	var tErr *TransportError
	return errors.As(err, &tErr) && tErr.Status == 404
}
