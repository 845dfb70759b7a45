// Package client is a typed wrapper around the stratcom jobs HTTP API.
//
// Every typed method routes through a single request primitive that sets the
// JSON content type, attaches the bearer token from the TokenStore when one
// is present, and normalises failures into *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// APIError is the single failure kind every call can return. It carries the
// server's best-effort message and the HTTP status, or status 0 when the
// request never reached the server. There is no finer taxonomy; callers that
// need to differentiate inspect Message or StatusCode.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorEnvelope matches the backend's canonical {"error": "..."} body.
type errorEnvelope struct {
	Error string `json:"error"`
}

// Options controls client construction.
type Options struct {
	// BaseURL is the API root, e.g. "https://jobs.example.com". Required.
	BaseURL string
	// Tokens supplies/persists the bearer token. Defaults to an in-memory store.
	Tokens TokenStore
	// HTTPClient overrides the underlying transport. Defaults to a client
	// with a 30s timeout.
	HTTPClient *http.Client
	// Logger receives one debug line per request. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Client issues requests against the jobs backend.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenStore
	validate *payloadValidator
	log      zerolog.Logger
}

// New builds a Client from opts.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     hc,
		tokens:   tokens,
		validate: newPayloadValidator(),
		log:      opts.Logger,
	}
}

// Tokens exposes the token store, mainly so callers can share it.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// do performs one JSON round trip. endpoint is the route template used as the
// metrics label ("/jobs/:id"); path is the concrete request path. in is
// marshalled as the request body when non-nil; out is filled from a 2xx
// response body when non-nil.
func (c *Client) do(ctx context.Context, method, endpoint, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &APIError{Message: "encode request: " + err.Error()}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	res, err := c.send(req, method, endpoint)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.decodeError(res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &APIError{StatusCode: res.StatusCode, Message: "decode response: " + err.Error()}
	}
	return nil
}

// send executes the prepared request and records request metrics. Transport
// failures come back as *APIError with status 0.
func (c *Client) send(req *http.Request, method, endpoint string) (*http.Response, error) {
	start := time.Now()
	res, err := c.http.Do(req)
	elapsed := time.Since(start)

	status := "error"
	if err == nil {
		status = strconv.Itoa(res.StatusCode)
	}
	metrics.RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())

	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("request failed")
		return nil, &APIError{Message: "request failed: " + err.Error()}
	}

	c.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", res.StatusCode).
		Dur("elapsed", elapsed).
		Msg("request")
	return res, nil
}

// authorize attaches the stored bearer token, if any. A store read error is
// treated the same as no token; the server will reject if auth was required.
func (c *Client) authorize(req *http.Request) {
	token, err := c.tokens.Token()
	if err != nil || token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// decodeError turns a non-2xx response into an *APIError. It prefers the
// JSON error envelope and falls back to a generic message that always
// includes the status, so the message is never empty.
func (c *Client) decodeError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return &APIError{StatusCode: res.StatusCode, Message: env.Error}
	}
	return &APIError{
		StatusCode: res.StatusCode,
		Message:    fmt.Sprintf("request failed with status %d", res.StatusCode),
	}
}
