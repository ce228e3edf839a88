// Package upload posts local files to presigned storage URLs.
package upload

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"github.com/singlebase/singlebase-go/internal/apierrors"
	"github.com/singlebase/singlebase-go/internal/debug"
	"github.com/singlebase/singlebase-go/internal/metrics"
)

// FileField is the form field that carries the file.
const FileField = "file"

// Options configures an Uploader.
type Options struct {
	// HTTPClient replaces the default client.
	HTTPClient *http.Client
	// Timeout bounds one upload. Zero means no limit.
	Timeout time.Duration
	Metrics *metrics.Metrics
}

// Uploader sends multipart POST requests to presigned URLs.
type Uploader struct {
	client  *resty.Client
	metrics *metrics.Metrics
}

// Outcome is delivered by UploadAsync.
type Outcome struct {
	OK  bool
	Err error
}

// New builds an Uploader.
func New(opts Options) *Uploader {
	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &Uploader{client: client, metrics: opts.Metrics}
}

// UploadPresignedFile uploads with a one-off Uploader whose idle connections
// are closed before it returns.
func UploadPresignedFile(ctx context.Context, path string, d Descriptor) (bool, error) {
	u := New(Options{})
	defer u.Close()
	return u.Upload(ctx, path, d)
}

// UploadPresignedFileAsync is the non-blocking form of UploadPresignedFile.
// The one-off Uploader is released on every exit path.
func UploadPresignedFileAsync(ctx context.Context, path string, d Descriptor) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		ok, err := UploadPresignedFile(ctx, path, d)
		out <- Outcome{OK: ok, Err: err}
	}()
	return out
}

// Close releases idle connections held by the Uploader's transport.
func (u *Uploader) Close() {
	u.client.GetClient().CloseIdleConnections()
}

// Upload reads path and posts it under the "file" field together with the
// descriptor's fields. It returns true only for a 2xx response; any other
// status, and any network failure, is reported as *apierrors.UploadError.
func (u *Uploader) Upload(ctx context.Context, path string, d Descriptor) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}

	// The file is held open only while it is read.
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	start := time.Now()
	resp, err := u.client.R().
		SetContext(ctx).
		SetFormData(d.Fields).
		SetMultipartField(FileField, filepath.Base(path), mimetype.Detect(content).String(), bytes.NewReader(content)).
		Post(d.URL)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("upload failed", "url", d.URL, "file", path, "error", err)
		}
		u.metrics.ObserveUpload(metrics.OutcomeException, len(content), time.Since(start))
		return false, &apierrors.UploadError{URL: d.URL, Err: err}
	}

	if debug.IsEnabled(ctx) {
		slog.Debug("upload complete", "url", d.URL, "file", path, "status", resp.StatusCode(), "bytes", len(content), "duration", time.Since(start))
	}
	if !resp.IsSuccess() {
		u.metrics.ObserveUpload(metrics.OutcomeFailure, len(content), time.Since(start))
		return false, &apierrors.UploadError{
			URL:        d.URL,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.String(),
		}
	}

	u.metrics.ObserveUpload(metrics.OutcomeSuccess, len(content), time.Since(start))
	return true, nil
}

// UploadAsync runs Upload in its own goroutine. The channel yields one
// Outcome and is then closed.
func (u *Uploader) UploadAsync(ctx context.Context, path string, d Descriptor) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		ok, err := u.Upload(ctx, path, d)
		out <- Outcome{OK: ok, Err: err}
	}()
	return out
}
