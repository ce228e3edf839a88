package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/singlebase/singlebase-go/internal/apierrors"
	"github.com/singlebase/singlebase-go/internal/config"
)

// HandleError renders err for a terminal, with suggestions where they help.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	var remoteErr *apierrors.RemoteError
	var uploadErr *apierrors.UploadError
	var transportErr *apierrors.TransportError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		fmt.Fprintf(&msg, "Error: %s\n", err)

	case errors.As(err, &remoteErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n", remoteErr.StatusCode, remoteErr.Message)
		writeSuggestion(&msg, apierrors.ErrorCodeFromStatus(remoteErr.StatusCode))

	case errors.As(err, &uploadErr):
		fmt.Fprintf(&msg, "Upload failed: %s\n", uploadErr)
		writeSuggestion(&msg, apierrors.ErrCodeUpload)

	case errors.As(err, &transportErr):
		fmt.Fprintf(&msg, "Request failed: %s\n", transportErr)
		writeSuggestion(&msg, apierrors.ErrCodeTransport)

	case apierrors.IsConfigurationError(err):
		fmt.Fprintf(&msg, "Error: %s\n", err)
		writeSuggestion(&msg, apierrors.ErrCodeConfiguration)

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err)
	}

	return msg.String()
}

func writeSuggestion(b *strings.Builder, code apierrors.ErrorCode) {
	if s := code.Suggestion(); s != "" {
		fmt.Fprintf(b, "\nSuggestion: %s\n", s)
	}
}
