// Package client is the JSON HTTP client used to talk to the auth API.
//
// Client is the generic request wrapper; AuthClient layers the login and
// registration calls on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

const userAgent = "itla-login/1.0"

// TokenSource supplies the Authorization header value, if any.
// *session.TokenStore satisfies it.
type TokenSource interface {
	AuthHeader() (string, bool)
}

// Client sends JSON requests relative to a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request; zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client. tokens may be nil, in which case no request carries auth.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestConfig struct {
	body        any
	headers     map[string]string
	includeAuth bool
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

// WithBody JSON-encodes v as the request body. A nil v sends no body.
func WithBody(v any) RequestOption {
	return func(rc *requestConfig) {
		rc.body = v
	}
}

// WithHeader adds or overrides a request header.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers[key] = value
	}
}

// WithoutAuth suppresses the Authorization header, e.g. for login itself.
func WithoutAuth() RequestOption {
	return func(rc *requestConfig) {
		rc.includeAuth = false
	}
}

// Request performs one HTTP call and returns the raw JSON body of a 2xx response.
// Any failure is a *RequestError.
func (c *Client) Request(ctx context.Context, method, path string, opts ...RequestOption) (json.RawMessage, error) {
	rc := requestConfig{
		headers:     map[string]string{"Content-Type": "application/json"},
		includeAuth: true,
	}
	for _, opt := range opts {
		opt(&rc)
	}

	reqErr := func(kind ErrorKind, status int, detail string, err error) *RequestError {
		return &RequestError{Kind: kind, Method: method, Path: path, Status: status, Detail: detail, Err: err}
	}

	var bodyReader io.Reader
	if rc.body != nil {
		data, err := json.Marshal(rc.body)
		if err != nil {
			return nil, reqErr(KindNetwork, 0, "", serr.Wrap(err, "failed to marshal request body"))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, reqErr(KindNetwork, 0, "", serr.Wrap(err, "failed to create request"))
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range rc.headers {
		req.Header.Set(k, v)
	}

	if rc.includeAuth && c.tokens != nil {
		if header, ok := c.tokens.AuthHeader(); ok {
			req.Header.Set("Authorization", header)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors pass through unwrapped so their text stays intact.
		logger.Debug("API error", "method", method, "path", path, "error", err.Error())
		return nil, reqErr(KindNetwork, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, reqErr(KindNetwork, resp.StatusCode, "", serr.Wrap(err, "failed to read response body"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := reqErr(KindStatus, resp.StatusCode, parseDetail(body), nil)
		logger.Debug("API error", "method", method, "path", path,
			"status", strconv.Itoa(resp.StatusCode), "error", e.Error())
		return nil, e
	}

	if !json.Valid(body) {
		return nil, reqErr(KindResponse, resp.StatusCode, "", serr.New("response is not valid JSON"))
	}
	return json.RawMessage(body), nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, opts...)
}

// Post performs a POST request with data as the JSON body.
func (c *Client) Post(ctx context.Context, path string, data any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, append([]RequestOption{WithBody(data)}, opts...)...)
}

// Put performs a PUT request with data as the JSON body.
func (c *Client) Put(ctx context.Context, path string, data any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, path, append([]RequestOption{WithBody(data)}, opts...)...)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, path, opts...)
}

// Decode unmarshals a response body into T. Shape mismatches come back as
// a KindResponse *RequestError.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &RequestError{Kind: KindResponse, Err: serr.Wrap(err, "unexpected response shape")}
	}
	return out, nil
}
