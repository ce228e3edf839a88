package cmd

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownCommandSuggestion(t *testing.T) {
	env := setupBareEnv(t)

	err := env.run("cal")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, env.errOut.String(), `Did you mean "call"?`)
}

func TestUnknownFlagSuggestion(t *testing.T) {
	env := setupBareEnv(t)

	err := env.run("upload", "--concurrenc", "2", "f")
	require.Error(t, err)
	assert.Contains(t, env.errOut.String(), `Did you mean "--concurrency"?`)
	assert.Contains(t, env.errOut.String(), "singlebase upload --help")
}

func TestOutputFlagConflicts(t *testing.T) {
	env := setupBareEnv(t)

	err := env.run("version", "--json", "--output", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--json conflicts with --output text")

	err = env.run("version", "-o", "text", "-q", ".version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--query requires")

	err = env.run("version", "-o", "yaml")
	require.Error(t, err)
}

func TestOutputFromEnv(t *testing.T) {
	env := setupBareEnv(t)
	t.Setenv("SINGLEBASE_OUTPUT", "json")

	require.NoError(t, env.run("version"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, "singlebase-go", got["client_id"])
}

func TestVersion(t *testing.T) {
	env := setupBareEnv(t)

	require.NoError(t, env.run("version"))
	assert.Contains(t, env.out.String(), "singlebase dev")

	require.NoError(t, env.run("version", "--jq", ".version"))
	assert.Equal(t, "\"dev\"\n", env.out.String())
}

func TestDebugLogsToErrOut(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(200, `{"data":{}}`))

	require.NoError(t, env.run("call", "op", "--debug"))
	assert.Contains(t, env.errOut.String(), "request complete")
	assert.NotContains(t, env.errOut.String(), "test-key")
}

func TestTokenInspect(t *testing.T) {
	env := setupBareEnv(t)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := jwt.RegisteredClaims{Subject: "user-1", Issuer: "singlebase", ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.NoError(t, env.run("token", "inspect", token, "--json"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, "user-1", got["subject"])
	assert.Equal(t, false, got["expired"])

	t.Setenv("SINGLEBASE_BEARER_TOKEN", token)
	require.NoError(t, env.run("token", "inspect"))
	assert.Contains(t, env.out.String(), "user-1")

	err = env.run("token", "inspect", "opaque")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JWT")
}

func TestTokenInspect_Missing(t *testing.T) {
	env := setupBareEnv(t)

	err := env.run("token", "inspect")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}
