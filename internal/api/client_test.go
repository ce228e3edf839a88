package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/singlebase/singlebase-go/internal/apierrors"
	"github.com/singlebase/singlebase-go/internal/metrics"
	"github.com/singlebase/singlebase-go/internal/result"
)

func newTestClient(t *testing.T, url string, headers map[string]string) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", APIURL: url, Headers: headers})
	require.NoError(t, err)
	return c
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing api key", Config{APIURL: "https://example.com"}, apierrors.ErrMissingAPIKey},
		{"blank api key", Config{APIKey: "  ", EndpointKey: "abc"}, apierrors.ErrMissingAPIKey},
		{"missing endpoint", Config{APIKey: "key"}, apierrors.ErrMissingEndpointKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			assert.Nil(t, c)
			assert.True(t, apierrors.IsConfigurationError(err))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolveURL(t *testing.T) {
	url, err := ResolveURL("", "proj-123")
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.singlebaseapis.com/api/proj-123", url)

	url, err = ResolveURL("https://custom.example.com/v1", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "https://custom.example.com/v1", url)
}

func TestNew_CopiesHeaders(t *testing.T) {
	headers := map[string]string{"X-Env": "prod"}
	c := newTestClient(t, "https://example.com", headers)
	headers["X-Env"] = "changed"

	assert.Equal(t, "prod", c.Headers()["X-Env"])
	assert.Equal(t, "https://example.com", c.URL())
}

func TestCall_Success(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, ClientID, r.Header.Get("x-sbc-sdk-client"))
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies <- body

		jsonHandler(http.StatusOK, `{"data": {"msg": "ok", "created_at": "2024-05-01T12:00:00Z"}, "meta": {"page": 1}}`)(w, r)
	}))
	defer server.Close()

	res := newTestClient(t, server.URL, nil).Call(context.Background(), Payload{"op": "ping", "limit": 5}, nil, "")

	require.True(t, res.OK, res.Error)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "ok", res.Data["msg"])
	assert.IsType(t, time.Time{}, res.Data["created_at"])
	assert.Equal(t, int64(1), res.Meta["page"])
	assert.Equal(t, map[string]any{"op": "ping", "limit": float64(5)}, <-bodies)
}

func TestCall_SuccessWithoutDataOrMeta(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{}`))
	defer server.Close()

	res := newTestClient(t, server.URL, nil).Call(context.Background(), Payload{"op": "ping"}, nil, "")
	require.True(t, res.OK)
	assert.NotNil(t, res.Data)
	assert.NotNil(t, res.Meta)
}

func TestCall_RemoteError(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusBadRequest, `{"error": "Bad Request"}`))
	defer server.Close()

	res := newTestClient(t, server.URL, nil).Call(context.Background(), Payload{"op": "ping"}, nil, "")

	assert.False(t, res.OK)
	assert.Equal(t, "Bad Request", res.Error)
	assert.Equal(t, 400, res.StatusCode)
	assert.Empty(t, res.Data)
}

func TestCall_NonOKStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"created is not success", http.StatusCreated, `{"data": {}}`, unknownError},
		{"error without message", http.StatusServiceUnavailable, `{}`, unknownError},
		{"forbidden", http.StatusForbidden, `{"error": "Forbidden"}`, "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(jsonHandler(tt.status, tt.body))
			defer server.Close()

			res := newTestClient(t, server.URL, nil).Call(context.Background(), Payload{"op": "ping"}, nil, "")
			assert.False(t, res.OK)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.wantErr, res.Error)
		})
	}
}

func TestCall_InvalidPayloadSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	for _, payload := range []Payload{nil, {}, {"op": ""}, {"op": 42}, {"collection": "users"}} {
		res := c.Call(context.Background(), payload, nil, "")
		assert.False(t, res.OK)
		assert.Equal(t, 400, res.StatusCode)
		assert.True(t, strings.HasPrefix(res.Error, "INVALID_PAYLOAD"), res.Error)
	}

	res := c.Call(context.Background(), Payload{"data": 1}, nil, "")
	assert.Equal(t, "INVALID_PAYLOAD: missing 'op'", res.Error)
	assert.Equal(t, int32(0), hits.Load())
}

func TestCall_HeaderPrecedence(t *testing.T) {
	seen := make(chan http.Header, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Clone()
		jsonHandler(http.StatusOK, `{"data": {}}`)(w, r)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, map[string]string{
		"X-Trace":          "default",
		"X-Default-Only":   "yes",
		"x-api-key":        "spoofed",
		"x-sbc-sdk-client": "other",
	})

	res := c.Call(context.Background(), Payload{"op": "ping"}, map[string]string{
		"X-Trace":       "per-call",
		"Authorization": "Basic abc",
	}, "tok")
	require.True(t, res.OK)

	got := <-seen
	assert.Equal(t, "per-call", got.Get("X-Trace"))
	assert.Equal(t, "yes", got.Get("X-Default-Only"))
	assert.Equal(t, "test-key", got.Get("x-api-key"))
	assert.Equal(t, ClientID, got.Get("x-sbc-sdk-client"))
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))

	res = c.Call(context.Background(), Payload{"op": "ping"}, map[string]string{"Authorization": "Basic abc"}, "")
	require.True(t, res.OK)
	assert.Equal(t, "Basic abc", (<-seen).Get("Authorization"))
}

func TestCall_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{}`))
	url := server.URL
	server.Close()

	res := newTestClient(t, url, nil).Call(context.Background(), Payload{"op": "ping"}, nil, "")

	assert.False(t, res.OK)
	assert.Equal(t, 500, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Error, "EXCEPTION: "), res.Error)
}

func TestCall_MalformedBody(t *testing.T) {
	for _, body := range []string{"not json", "", `["a"]`, `{"data": [1, 2]}`} {
		server := httptest.NewServer(jsonHandler(http.StatusOK, body))

		res := newTestClient(t, server.URL, nil).Call(context.Background(), Payload{"op": "ping"}, nil, "")
		assert.False(t, res.OK, body)
		assert.Equal(t, 500, res.StatusCode, body)
		assert.True(t, strings.HasPrefix(res.Error, "EXCEPTION: "), res.Error)

		server.Close()
	}
}

func TestCall_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c, err := New(Config{
		APIKey:     "test-key",
		APIURL:     server.URL,
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})
	require.NoError(t, err)

	res := c.Call(context.Background(), Payload{"op": "slow"}, nil, "")
	assert.False(t, res.OK)
	assert.Equal(t, 500, res.StatusCode)
	assert.Contains(t, res.Error, "EXCEPTION: ")
}

func TestCallAsync(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{"data": {"msg": "ok"}, "meta": {}}`))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	ch := c.CallAsync(context.Background(), Payload{"op": "ping"}, nil, "tok")
	res, ok := <-ch
	require.True(t, ok)
	require.True(t, res.OK, res.Error)
	assert.Equal(t, "ok", res.Data["msg"])

	_, ok = <-ch
	assert.False(t, ok, "channel should be closed after one result")

	invalid := <-c.CallAsync(context.Background(), Payload{}, nil, "")
	assert.False(t, invalid.OK)
	assert.Equal(t, "INVALID_PAYLOAD: missing 'op'", invalid.Error)
}

func TestCallAsync_Concurrent(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		jsonHandler(http.StatusOK, `{"data": {}}`)(w, r)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	pending := make([]<-chan *result.Result, 0, 8)
	for i := 0; i < 8; i++ {
		pending = append(pending, c.CallAsync(context.Background(), Payload{"op": "ping"}, nil, ""))
	}
	for _, ch := range pending {
		assert.True(t, (<-ch).OK)
	}
	assert.Equal(t, int32(8), hits.Load())
}

func TestCall_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusBadRequest, `{"error": "nope"}`))
	defer server.Close()

	m := metrics.New(prometheus.NewRegistry())
	c, err := New(Config{APIKey: "k", APIURL: server.URL, Metrics: m})
	require.NoError(t, err)

	c.Call(context.Background(), Payload{"op": "ping"}, nil, "")
	c.Call(context.Background(), Payload{}, nil, "")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("ping", "400", metrics.OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("", "400", metrics.OutcomeInvalid)))
}
