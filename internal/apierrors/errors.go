// Package apierrors holds the error taxonomy shared by the Singlebase client packages.
package apierrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrMissingAPIKey is returned when a client is built without an API key.
	ErrMissingAPIKey = errors.New("MISSING_API_KEY")

	// ErrMissingEndpointKey is returned when neither an API URL nor an endpoint key is given.
	ErrMissingEndpointKey = errors.New("MISSING_ENDPOINT_KEY")

	// ErrInvalidPayload is returned when an operation payload has no usable op field.
	ErrInvalidPayload = errors.New("INVALID_PAYLOAD")

	// ErrInvalidDescriptor is returned when a presigned upload descriptor is incomplete.
	ErrInvalidDescriptor = errors.New("invalid upload descriptor")
)

// ConfigurationError reports an invalid client construction.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed operation payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidPayload, e.Reason)
	}
	return fmt.Sprintf("%s: %s '%s'", ErrInvalidPayload, e.Reason, e.Field)
}

// Is matches ErrInvalidPayload.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPayload
}

// TransportError wraps a network, timeout or body decoding failure.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-200 response carrying the server-provided message.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error %d", e.StatusCode)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// UploadError reports a failed presigned upload. StatusCode is zero when the
// request never produced a response.
type UploadError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload to %s failed: %v", e.URL, e.Err)
	}
	msg := fmt.Sprintf("upload failed with status %s", e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// TraversalTypeError is returned by dotted-path lookups that reach a
// non-mapping value before the path is exhausted.
type TraversalTypeError struct {
	Path string
	Key  string
	Got  any
}

func (e *TraversalTypeError) Error() string {
	return fmt.Sprintf("cannot look up %q in %q: value is %T, not a mapping", e.Key, e.Path, e.Got)
}

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsValidationError checks if the error is a payload validation error.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport error.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsUploadError checks if the error is an upload error.
func IsUploadError(err error) bool {
	var e *UploadError
	return errors.As(err, &e)
}

// IsTraversalTypeError checks if the error came from a dotted-path lookup.
func IsTraversalTypeError(err error) bool {
	var e *TraversalTypeError
	return errors.As(err, &e)
}
