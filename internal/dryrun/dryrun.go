// Package dryrun previews requests without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/singlebase/singlebase-go/internal/jsonext"
)

type contextKey struct{}

// Redacted replaces credential header values in a preview.
const Redacted = "[REDACTED]"

var secretHeaders = map[string]struct{}{
	"x-api-key":     {},
	"authorization": {},
}

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(contextKey{}).(bool)
	return v
}

// Preview describes a request that would have been sent.
type Preview struct {
	Action   string            `json:"action"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	Payload  map[string]any    `json:"payload,omitempty"`
	Files    []string          `json:"files,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// RedactHeaders flattens h and masks credentials.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if _, secret := secretHeaders[strings.ToLower(name)]; secret {
			out[name] = Redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// Write renders the preview for a terminal.
func (p *Preview) Write(w io.Writer) error {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s: POST %s\n", p.Action, p.URL)

	if len(p.Headers) > 0 {
		_, _ = fmt.Fprintln(w, "Headers:")
		names := make([]string, 0, len(p.Headers))
		for name := range p.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", name, p.Headers[name])
		}
	}

	if p.Payload != nil {
		encoded, err := jsonext.Encode(p.Payload)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Payload: %s\n", encoded)
	}

	for _, f := range p.Files {
		_, _ = fmt.Fprintf(w, "  file: %s\n", f)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
	}

	_, err := fmt.Fprintln(w, "Nothing sent (dry-run mode)")
	return err
}
