package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/iocontext"
)

// testEnv holds the mock server, keyring and captured streams for one test.
type testEnv struct {
	t      *testing.T
	server *httptest.Server
	ring   *keyring.ArrayKeyring
	out    *bytes.Buffer
	errOut *bytes.Buffer
	in     io.Reader
}

// setupTestEnv starts a server running handler and points the CLI at it
// through SINGLEBASE_API_KEY and SINGLEBASE_API_URL.
func setupTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()
	env := setupBareEnv(t)
	env.server = httptest.NewServer(handler)
	t.Cleanup(env.server.Close)

	t.Setenv("SINGLEBASE_API_KEY", "test-key")
	t.Setenv("SINGLEBASE_API_URL", env.server.URL)
	return env
}

// setupBareEnv clears SINGLEBASE_* variables and installs an in-memory keyring.
func setupBareEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{
		"SINGLEBASE_API_KEY", "SINGLEBASE_API_URL", "SINGLEBASE_ENDPOINT_KEY",
		"SINGLEBASE_BEARER_TOKEN", "SINGLEBASE_PROFILE", "SINGLEBASE_OUTPUT", "SINGLEBASE_TIMEOUT",
		"SINGLEBASE_KEYRING_BACKEND", "SINGLEBASE_KEYRING_PASSWORD", "SINGLEBASE_CREDENTIALS_DIR",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("HOME", t.TempDir())

	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))

	return &testEnv{
		t:      t,
		ring:   ring,
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		in:     strings.NewReader(""),
	}
}

// run executes the CLI with fresh output buffers.
func (e *testEnv) run(args ...string) error {
	e.t.Helper()
	e.out.Reset()
	e.errOut.Reset()
	ctx := iocontext.WithIO(context.Background(), &iocontext.IO{Out: e.out, ErrOut: e.errOut, In: e.in})
	return Execute(ctx, args)
}

// jsonResponse returns a handler that writes body with the given status.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}
