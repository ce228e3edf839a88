package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/iocontext"
)

func TestProfileLogin_FromStdin(t *testing.T) {
	env := setupBareEnv(t)
	env.in = strings.NewReader("piped-secret-key\n")

	require.NoError(t, env.run("profile", "login", "ci", "--key", "my-project", "-H", "X-Team: core"))
	assert.Contains(t, env.out.String(), "Profile ci saved")

	p, err := config.LoadProfile("ci")
	require.NoError(t, err)
	assert.Equal(t, "piped-secret-key", p.APIKey)
	assert.Equal(t, "my-project", p.EndpointKey)
	assert.Equal(t, map[string]string{"X-Team": "core"}, p.Headers)

	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "ci", current)
}

func TestProfileLogin_Validation(t *testing.T) {
	env := setupBareEnv(t)

	err := env.run("profile", "login", "--api-key", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")

	err = env.run("profile", "login", "--api-key", "k", "--url", "http://example.com/api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plain http")

	err = env.run("profile", "login", "bad name", "--api-key", "k", "--key", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid profile name")

	err = env.run("profile", "login", "--key", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--api-key is required")
}

func TestProfile_UsedByCall(t *testing.T) {
	handler, requests := capturingHandler(t, 200, `{"data":{}}`)
	env := setupTestEnv(t, handler)
	serverURL := env.server.URL
	t.Setenv("SINGLEBASE_API_KEY", "")
	t.Setenv("SINGLEBASE_API_URL", "")

	require.NoError(t, env.run("profile", "login", "local", "--api-key", "stored-key", "--url", serverURL, "-H", "X-Team: core"))
	require.NoError(t, env.run("call", "op"))

	req := <-requests
	assert.Equal(t, "stored-key", req.headers.Get("x-api-key"))
	assert.Equal(t, "core", req.headers.Get("X-Team"))
}

func TestProfile_ListUseShowDelete(t *testing.T) {
	env := setupBareEnv(t)
	require.NoError(t, config.SaveProfile("staging", config.Profile{APIKey: "sk-staging-0123456789", EndpointKey: "stage"}))
	require.NoError(t, config.SaveProfile("production", config.Profile{APIKey: "sk-prod-0123456789", APIURL: "https://api.example.com/x"}))

	require.NoError(t, env.run("profile", "list"))
	assert.Contains(t, env.out.String(), "staging")
	assert.Contains(t, env.out.String(), "https://api.example.com/x")

	require.NoError(t, env.run("profile", "list", "--json"))
	var listed map[string][]map[string]any
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &listed))
	require.Len(t, listed["items"], 2)
	assert.Equal(t, "production", listed["items"][1]["name"])
	assert.Equal(t, true, listed["items"][1]["current"])
	assert.NotContains(t, listed["items"][0], "api_key")

	require.NoError(t, env.run("profile", "use", "staging"))
	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "staging", current)

	require.NoError(t, env.run("profile", "show", "--json"))
	var shown map[string]any
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &shown))
	assert.Equal(t, "staging", shown["name"])
	assert.Equal(t, "sk-s*************6789", shown["api_key"])

	require.NoError(t, env.run("profile", "delete", "staging"))
	names, err := config.ListProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"production"}, names)
}

func TestProfileUse_SuggestsClosestName(t *testing.T) {
	env := setupBareEnv(t)
	require.NoError(t, config.SaveProfile("production", config.Profile{APIKey: "k", EndpointKey: "p"}))

	err := env.run("profile", "use", "prod")
	require.Error(t, err)
	assert.Equal(t, exitNotFound, ExitCode(err))
	assert.Contains(t, env.errOut.String(), `did you mean "production"?`)
}

func TestProfileList_Empty(t *testing.T) {
	env := setupBareEnv(t)

	require.NoError(t, env.run("profile", "list"))
	assert.Contains(t, env.errOut.String(), "No profiles found")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("abcd"))
	assert.Equal(t, "abcd****mnop", maskSecret("abcdefghmnop"))
}

func TestProfileLogin_BrowserFlags(t *testing.T) {
	env := setupBareEnv(t)

	err := env.run("profile", "login", "--browser", "--api-key", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ctx = iocontext.WithIO(ctx, &iocontext.IO{Out: env.out, ErrOut: env.errOut, In: env.in})
	err = Execute(ctx, []string{"profile", "login", "staging", "--browser"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), context.Canceled.Error())
	assert.Contains(t, env.errOut.String(), "http://127.0.0.1:")

	_, err = config.LoadProfile("staging")
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
}
