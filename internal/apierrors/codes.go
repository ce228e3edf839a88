package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable classification of a failure.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates the client could not be built.
	ErrCodeConfiguration ErrorCode = "configuration"
	// ErrCodeValidation indicates the payload was rejected before sending.
	ErrCodeValidation ErrorCode = "validation_failed"
	// ErrCodeBadRequest indicates a malformed request (HTTP 400).
	ErrCodeBadRequest ErrorCode = "bad_request"
	// ErrCodeUnauthorized indicates a missing or rejected credential (HTTP 401).
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeForbidden indicates the credential lacks permission (HTTP 403).
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeNotFound indicates the endpoint or resource does not exist (HTTP 404).
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeRateLimited indicates too many requests (HTTP 429).
	ErrCodeRateLimited ErrorCode = "rate_limited"
	// ErrCodeServerError indicates an HTTP 5xx response.
	ErrCodeServerError ErrorCode = "server_error"
	// ErrCodeTransport indicates the request never completed.
	ErrCodeTransport ErrorCode = "transport"
	// ErrCodeUpload indicates a presigned upload was rejected.
	ErrCodeUpload ErrorCode = "upload_failed"
	// ErrCodeUnknown indicates an unclassified failure.
	ErrCodeUnknown ErrorCode = "unknown"
)

// Suggestion returns a human-readable hint for resolving the failure.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrCodeConfiguration:
		return "Set an API key and either an API URL or an endpoint key"
	case ErrCodeValidation:
		return "Include a non-empty string 'op' field in the payload"
	case ErrCodeUnauthorized:
		return "Check the API key and bearer token"
	case ErrCodeForbidden:
		return "Check the permissions attached to the API key"
	case ErrCodeNotFound:
		return "Verify the endpoint key or API URL"
	case ErrCodeRateLimited:
		return "Wait a moment before calling again"
	case ErrCodeServerError:
		return "The server encountered an error; try again later"
	case ErrCodeTransport:
		return "Check network connectivity to the API"
	case ErrCodeUpload:
		return "The presigned descriptor may have expired; request a new one"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrCodeBadRequest
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeNotFound
	case 429:
		return ErrCodeRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrCodeServerError
		}
		return ErrCodeUnknown
	}
}

// StructuredError is the JSON shape used to report failures to scripts.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromError classifies any error into a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		se := NewStructuredError(ErrorCodeFromStatus(remoteErr.StatusCode), remoteErr.Message)
		se.Context = map[string]any{"status_code": remoteErr.StatusCode}
		return se
	}

	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		se := NewStructuredError(ErrCodeUpload, uploadErr.Error())
		se.Context = map[string]any{"url": uploadErr.URL}
		if uploadErr.StatusCode != 0 {
			se.Context["status_code"] = uploadErr.StatusCode
		}
		return se
	}

	switch {
	case IsConfigurationError(err):
		return NewStructuredError(ErrCodeConfiguration, err.Error())
	case IsValidationError(err):
		return NewStructuredError(ErrCodeValidation, err.Error())
	case IsTransportError(err):
		return NewStructuredError(ErrCodeTransport, err.Error())
	}

	return &StructuredError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}
