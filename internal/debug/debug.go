// Package debug carries the debug flag through contexts and configures slog.
package debug

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type contextKey struct{}

// Attribute keys whose values are never written to logs.
var secretKeys = map[string]struct{}{
	"api_key":       {},
	"x-api-key":     {},
	"authorization": {},
	"bearer_token":  {},
	"token":         {},
}

const redacted = "[REDACTED]"

// WithDebug returns a context with debug mode enabled or disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether debug mode is enabled in ctx.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(contextKey{}).(bool)
	return v
}

// NewLogger returns a text logger writing to w at Debug level when enabled
// and Warn level otherwise. Secret attributes are redacted.
func NewLogger(w io.Writer, enabled bool) *slog.Logger {
	level := slog.LevelWarn
	if enabled {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSecrets,
	}))
}

// SetupLogger installs NewLogger(w, enabled) as the default logger.
func SetupLogger(w io.Writer, enabled bool) {
	slog.SetDefault(NewLogger(w, enabled))
}

func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	if _, ok := secretKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	return a
}
