package cmd

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/spf13/pflag"

	"github.com/singlebase/singlebase-go/internal/apierrors"
	"github.com/singlebase/singlebase-go/internal/config"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitForbidden   = 5
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		return exitAuth
	case errors.Is(err, config.ErrProfileNotFound):
		return exitNotFound
	}
	if code := exitCodeFromStructured(err); code != 0 {
		return code
	}
	if isUsageError(err) {
		return exitUsage
	}
	if isNetworkError(err) {
		return exitNetwork
	}
	return exitGeneric
}

func exitCodeFromStructured(err error) int {
	structured := apierrors.StructuredErrorFromError(err)
	if structured == nil {
		return 0
	}
	switch structured.Code {
	case apierrors.ErrCodeUnauthorized:
		return exitAuth
	case apierrors.ErrCodeForbidden:
		return exitForbidden
	case apierrors.ErrCodeNotFound:
		return exitNotFound
	case apierrors.ErrCodeRateLimited:
		return exitRateLimited
	case apierrors.ErrCodeServerError:
		return exitServer
	case apierrors.ErrCodeTransport:
		return exitNetwork
	case apierrors.ErrCodeBadRequest, apierrors.ErrCodeValidation, apierrors.ErrCodeConfiguration:
		return exitUsage
	case apierrors.ErrCodeUpload:
		return exitCodeFromUpload(err)
	default:
		return 0
	}
}

func exitCodeFromUpload(err error) int {
	var uploadErr *apierrors.UploadError
	if !errors.As(err, &uploadErr) {
		return exitGeneric
	}
	if uploadErr.StatusCode == 0 {
		return exitNetwork
	}
	switch apierrors.ErrorCodeFromStatus(uploadErr.StatusCode) {
	case apierrors.ErrCodeForbidden:
		return exitForbidden
	case apierrors.ErrCodeNotFound:
		return exitNotFound
	case apierrors.ErrCodeServerError:
		return exitServer
	default:
		return exitGeneric
	}
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "certificate") ||
		strings.Contains(msg, "timeout")
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"accepts at most",
		"requires at least",
		"requires exactly",
		"invalid argument",
		"must be",
		"is required",
		"conflicts with",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
