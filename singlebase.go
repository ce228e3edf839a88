package singlebase

import (
	"context"

	"github.com/singlebase/singlebase-go/internal/api"
	"github.com/singlebase/singlebase-go/internal/jsonext"
	"github.com/singlebase/singlebase-go/internal/result"
	"github.com/singlebase/singlebase-go/internal/upload"
)

const (
	// BaseAPIURL is joined with an endpoint key when no API URL is given.
	BaseAPIURL = api.BaseAPIURL
	// ClientID is sent in the x-sbc-sdk-client header.
	ClientID = api.ClientID
	// DefaultTimeout bounds a single call.
	DefaultTimeout = api.DefaultTimeout
)

type (
	// Client sends operations to one endpoint.
	Client = api.Client
	// Config holds the values used to build a Client.
	Config = api.Config
	// Payload is an operation request. It must carry a non-empty string "op".
	Payload = api.Payload
	// Result is the outcome of a call.
	Result = result.Result
	// Descriptor is a presigned upload target.
	Descriptor = upload.Descriptor
	// UploadOutcome is delivered by UploadPresignedFileAsync.
	UploadOutcome = upload.Outcome
)

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	return api.New(cfg)
}

// ValidatePayload reports whether p carries a usable op field.
func ValidatePayload(p Payload) error {
	return api.ValidatePayload(p)
}

// Success builds an OK Result.
func Success(data, meta map[string]any, statusCode int) *Result {
	return result.Success(data, meta, statusCode)
}

// Failure builds a failed Result.
func Failure(message string, statusCode int) *Result {
	return result.Failure(message, statusCode)
}

// DescriptorFromMap converts the {url, fields} mapping returned by the API.
func DescriptorFromMap(m map[string]any) (Descriptor, error) {
	return upload.DescriptorFromMap(m)
}

// UploadPresignedFile posts the file at path to the presigned URL in d.
func UploadPresignedFile(ctx context.Context, path string, d Descriptor) (bool, error) {
	return upload.UploadPresignedFile(ctx, path, d)
}

// UploadPresignedFileAsync is the non-blocking form of UploadPresignedFile.
func UploadPresignedFileAsync(ctx context.Context, path string, d Descriptor) <-chan UploadOutcome {
	return upload.UploadPresignedFileAsync(ctx, path, d)
}

// Encode serializes v to JSON, rendering time.Time values as ISO-8601.
func Encode(v any) (string, error) {
	return jsonext.Encode(v)
}

// Decode parses JSON text and converts timestamp strings in objects to time.Time.
func Decode(text string) (any, error) {
	return jsonext.Decode(text)
}

// DecodeAll decodes each element of texts.
func DecodeAll(texts []string) ([]any, error) {
	return jsonext.DecodeAll(texts)
}
