package singlebase

import "github.com/singlebase/singlebase-go/internal/apierrors"

// Sentinel errors for errors.Is checks.
var (
	ErrMissingAPIKey      = apierrors.ErrMissingAPIKey
	ErrMissingEndpointKey = apierrors.ErrMissingEndpointKey
	ErrInvalidPayload     = apierrors.ErrInvalidPayload
	ErrInvalidDescriptor  = apierrors.ErrInvalidDescriptor
)

type (
	ConfigurationError = apierrors.ConfigurationError
	ValidationError    = apierrors.ValidationError
	TransportError     = apierrors.TransportError
	RemoteError        = apierrors.RemoteError
	UploadError        = apierrors.UploadError
	TraversalTypeError = apierrors.TraversalTypeError
)
