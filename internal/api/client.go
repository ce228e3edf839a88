// Package api implements the Singlebase operation client.
//
// A Client posts an operation payload to a single resolved endpoint and
// reports every outcome as a *result.Result. Apart from construction, no
// error crosses the client boundary: validation failures, remote errors and
// transport failures all come back as failed Results.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/singlebase/singlebase-go/internal/apierrors"
	"github.com/singlebase/singlebase-go/internal/debug"
	"github.com/singlebase/singlebase-go/internal/jsonext"
	"github.com/singlebase/singlebase-go/internal/metrics"
	"github.com/singlebase/singlebase-go/internal/result"
)

const (
	// BaseAPIURL is joined with an endpoint key when no explicit URL is given.
	BaseAPIURL = "https://cloud.singlebaseapis.com/api"
	// ClientID is sent in the x-sbc-sdk-client header.
	ClientID = "singlebase-go"
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 10 * time.Second

	exceptionStatus = http.StatusInternalServerError
	unknownError    = "Unknown Error"
)

// Header names set by the client.
const (
	HeaderAPIKey        = "x-api-key"
	HeaderClientID      = "x-sbc-sdk-client"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// Config holds the values used to build a Client.
type Config struct {
	APIKey string
	// APIURL takes precedence over EndpointKey.
	APIURL      string
	EndpointKey string
	Headers     map[string]string

	// HTTPClient replaces the default client. Its Timeout is used as is.
	HTTPClient *http.Client
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Client sends operations to one endpoint. It is immutable after New and
// safe for concurrent use.
type Client struct {
	apiKey  string
	url     string
	headers map[string]string
	http    *http.Client
	metrics *metrics.Metrics
}

// New validates cfg and builds a Client. It returns a
// *apierrors.ConfigurationError when the API key is empty or when neither
// an API URL nor an endpoint key is given.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &apierrors.ConfigurationError{Err: apierrors.ErrMissingAPIKey}
	}
	url, err := ResolveURL(cfg.APIURL, cfg.EndpointKey)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}

	return &Client{
		apiKey:  cfg.APIKey,
		url:     url,
		headers: maps.Clone(cfg.Headers),
		http:    httpClient,
		metrics: cfg.Metrics,
	}, nil
}

// ResolveURL returns apiURL when set, otherwise BaseAPIURL/endpointKey.
func ResolveURL(apiURL, endpointKey string) (string, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL != "" {
		return apiURL, nil
	}
	endpointKey = strings.Trim(strings.TrimSpace(endpointKey), "/")
	if endpointKey == "" {
		return "", &apierrors.ConfigurationError{Err: apierrors.ErrMissingEndpointKey}
	}
	return BaseAPIURL + "/" + endpointKey, nil
}

// NewHTTPClient returns an HTTP client with the given timeout and a
// transport that requires TLS 1.2 or newer.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

func newTransport() *http.Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		base = &http.Transport{}
	}
	transport := base.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	return transport
}

// URL returns the resolved endpoint URL.
func (c *Client) URL() string {
	return c.url
}

// Headers returns a copy of the default headers.
func (c *Client) Headers() map[string]string {
	return maps.Clone(c.headers)
}

// Call validates payload and posts it to the endpoint, blocking until the
// response is read or the timeout expires.
func (c *Client) Call(ctx context.Context, payload Payload, headers map[string]string, bearerToken string) *result.Result {
	if err := ValidatePayload(payload); err != nil {
		return c.rejected(ctx, err)
	}
	return c.dispatch(ctx, c.http, payload, headers, bearerToken)
}

// CallAsync behaves like Call but runs in its own goroutine. The returned
// channel yields exactly one Result and is then closed. Each async call
// uses its own connection pool, released when the call returns.
func (c *Client) CallAsync(ctx context.Context, payload Payload, headers map[string]string, bearerToken string) <-chan *result.Result {
	out := make(chan *result.Result, 1)
	payload = maps.Clone(payload)
	headers = maps.Clone(headers)

	go func() {
		defer close(out)
		if err := ValidatePayload(payload); err != nil {
			out <- c.rejected(ctx, err)
			return
		}
		session, release := c.session()
		defer release()
		out <- c.dispatch(ctx, session, payload, headers, bearerToken)
	}()
	return out
}

// session returns a short-lived HTTP client sharing c's settings.
func (c *Client) session() (*http.Client, func()) {
	transport, ok := c.http.Transport.(*http.Transport)
	if c.http.Transport == nil {
		transport, ok = newTransport(), true
	}
	if !ok {
		return c.http, func() {}
	}
	scoped := transport.Clone()
	return &http.Client{
		Timeout:       c.http.Timeout,
		Transport:     scoped,
		CheckRedirect: c.http.CheckRedirect,
		Jar:           c.http.Jar,
	}, scoped.CloseIdleConnections
}

func (c *Client) rejected(ctx context.Context, err error) *result.Result {
	if debug.IsEnabled(ctx) {
		slog.Debug("payload rejected", "url", c.url, "error", err)
	}
	c.metrics.ObserveCall("", http.StatusBadRequest, metrics.OutcomeInvalid, 0)
	return result.Failure(err.Error(), http.StatusBadRequest)
}

func (c *Client) dispatch(ctx context.Context, httpClient *http.Client, payload Payload, headers map[string]string, bearerToken string) *result.Result {
	start := time.Now()
	op := payload.Op()

	status, body, err := c.post(ctx, httpClient, payload, c.composeHeaders(headers, bearerToken))
	if err == nil {
		var res *result.Result
		res, err = toResult(status, body)
		if err == nil {
			outcome := metrics.OutcomeSuccess
			if !res.OK {
				outcome = metrics.OutcomeFailure
			}
			if debug.IsEnabled(ctx) {
				slog.Debug("request complete", "op", op, "url", c.url, "status", status, "duration", time.Since(start))
			}
			c.metrics.ObserveCall(op, status, outcome, time.Since(start))
			return res
		}
	}

	if debug.IsEnabled(ctx) {
		slog.Debug("request failed", "op", op, "url", c.url, "status", status, "error", err)
	}
	c.metrics.ObserveCall(op, exceptionStatus, metrics.OutcomeException, time.Since(start))
	return result.Failure("EXCEPTION: "+err.Error(), exceptionStatus)
}

// RequestHeaders returns the headers Call would send with these arguments.
func (c *Client) RequestHeaders(headers map[string]string, bearerToken string) http.Header {
	return c.composeHeaders(headers, bearerToken)
}

// composeHeaders layers headers so that later sources win: content type,
// client defaults, per-call headers, API key, client id, bearer token.
func (c *Client) composeHeaders(headers map[string]string, bearerToken string) http.Header {
	h := make(http.Header)
	h.Set(HeaderContentType, "application/json")
	for k, v := range c.headers {
		h.Set(k, v)
	}
	for k, v := range headers {
		h.Set(k, v)
	}
	h.Set(HeaderAPIKey, c.apiKey)
	h.Set(HeaderClientID, ClientID)
	if bearerToken != "" {
		h.Set(HeaderAuthorization, "Bearer "+bearerToken)
	}
	return h
}

func (c *Client) post(ctx context.Context, httpClient *http.Client, payload Payload, headers http.Header) (int, []byte, error) {
	encoded, err := jsonext.Encode(map[string]any(payload))
	if err != nil {
		return 0, nil, &apierrors.TransportError{Op: "encode payload", URL: c.url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader([]byte(encoded)))
	if err != nil {
		return 0, nil, &apierrors.TransportError{Op: "create request", URL: c.url, Err: err}
	}
	req.Header = headers

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, &apierrors.TransportError{Op: "request failed", URL: c.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &apierrors.TransportError{Op: "read response", URL: c.url, Err: err}
	}
	return resp.StatusCode, body, nil
}

// toResult maps a response to a Result. Bodies that are not a JSON object
// are reported as errors.
func toResult(status int, body []byte) (*result.Result, error) {
	decoded, err := jsonext.Decode(string(body))
	if err != nil {
		return nil, &apierrors.TransportError{Op: "decode response", Err: err}
	}
	parsed, ok := decoded.(map[string]any)
	if !ok {
		return nil, &apierrors.TransportError{Op: "decode response", Err: fmt.Errorf("expected a JSON object, got %T", decoded)}
	}

	if status != http.StatusOK {
		msg, _ := parsed["error"].(string)
		if msg == "" {
			msg = unknownError
		}
		return result.Failure(msg, status), nil
	}

	data, err := objectField(parsed, "data")
	if err != nil {
		return nil, err
	}
	meta, err := objectField(parsed, "meta")
	if err != nil {
		return nil, err
	}
	return result.Success(data, meta, status), nil
}

func objectField(parsed map[string]any, key string) (map[string]any, error) {
	switch v := parsed[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	default:
		return nil, &apierrors.TransportError{Op: "decode response", Err: fmt.Errorf("%q is %T, not an object", key, v)}
	}
}
