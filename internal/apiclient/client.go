// Package apiclient provides the JSON API client with transparent bearer
// credentials and a single refresh-and-retry pass on authorization failures.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/pcagrade/planning-client/internal/errors"
	"github.com/pcagrade/planning-client/internal/ports"
)

const (
	defaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response we keep around.
	maxErrorBody = 64 * 1024
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL prefixes relative request paths, e.g. "http://localhost:8080".
	BaseURL string

	// Credentials supplies bearer tokens and the refresh/login hooks. May be
	// nil; requests then go out unauthenticated.
	Credentials ports.CredentialSource

	// HTTPClient overrides the underlying transport, mainly for tests. When
	// nil a client with a public-suffix-aware cookie jar is built.
	HTTPClient *http.Client

	Timeout time.Duration
	Logger  *slog.Logger
}

// Client issues JSON requests against the backend API. Every call attaches the
// current bearer token when one exists. A 401 response triggers at most one
// token refresh followed by one retry of the same request; a second denial is
// terminal and kicks off a fresh login flow.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	creds      ports.CredentialSource
	logger     *slog.Logger
}

// NewClient builds a client for the given API base URL.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, apperrors.Validation("api base URL cannot be empty")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "parse api base URL")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, apperrors.Wrap(jarErr, apperrors.ErrCodeInternal, "build cookie jar")
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Jar:     jar,
		}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		creds:      opts.Credentials,
		logger:     logger,
	}, nil
}

// RequestOption customizes a single request.
type RequestOption func(*requestSettings)

type requestSettings struct {
	withoutAuth bool
	headers     http.Header
}

// WithoutAuth sends the request without credentials and disables the
// refresh-retry pass.
func WithoutAuth() RequestOption {
	return func(s *requestSettings) { s.withoutAuth = true }
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(s *requestSettings) {
		if s.headers == nil {
			s.headers = http.Header{}
		}
		s.headers.Add(key, value)
	}
}

// Get issues a GET and decodes a JSON response into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// Do issues one logical request. The request is sent at most twice: once, and
// once more after a successful token refresh when the first attempt came back
// 401. Non-2xx responses surface as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var settings requestSettings
	for _, opt := range opts {
		opt(&settings)
	}

	target, err := c.resolve(path)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeValidation, "marshal request body")
		}
	}

	// One request ID across both attempts so the retry is correlatable.
	requestID := uuid.NewString()

	resp, err := c.attempt(ctx, method, target, payload, requestID, settings)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !settings.withoutAuth && c.creds != nil {
		drain(resp)
		return c.retryAfterRefresh(ctx, method, target, payload, requestID, settings, out)
	}

	return c.consume(resp, out)
}

// retryAfterRefresh performs the single refresh-and-retry pass. Any failure on
// this path is terminal: the session is kicked back into a login flow and the
// caller sees an authorization error.
func (c *Client) retryAfterRefresh(ctx context.Context, method, target string, payload []byte, requestID string, settings requestSettings, out any) error {
	c.logger.Debug("request unauthorized, refreshing credentials",
		"method", method, "url", target, "request_id", requestID)

	if _, err := c.creds.Refresh(ctx); err != nil {
		c.kickLogin(ctx)
		return apperrors.Wrap(err, apperrors.ErrCodeAuthorizationDenied, "credential refresh after 401")
	}

	resp, err := c.attempt(ctx, method, target, payload, requestID, settings)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := c.responseError(resp)
		c.kickLogin(ctx)
		return apperrors.Wrap(apiErr, apperrors.ErrCodeAuthorizationDenied, "request denied after refresh")
	}

	return c.consume(resp, out)
}

// attempt sends one HTTP request, rebuilding the body reader from the
// marshaled payload.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, requestID string, settings requestSettings) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "build request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range settings.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	// Absence of a token is not an error; the request proceeds without
	// credentials and the server decides.
	if !settings.withoutAuth && c.creds != nil {
		if token, ok := c.creds.AccessToken(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransportFailure, fmt.Sprintf("%s %s", method, target))
	}
	return resp, nil
}

// consume finalizes a response: non-2xx becomes *APIError, 2xx optionally
// decodes JSON into out. An empty success body is fine regardless of out.
func (c *Client) consume(resp *http.Response, out any) error {
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTransportFailure, "read response body")
	}
	if len(data) == 0 {
		return nil
	}

	// A success body that is not structured data leaves out untouched; callers
	// get an empty result, not an error.
	if !isJSONContentType(resp.Header.Get("Content-Type")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "decode response body")
	}
	return nil
}

// responseError builds an *APIError from a non-2xx response.
func (c *Client) responseError(resp *http.Response) *APIError {
	defer drain(resp)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
	}
	if isJSONContentType(resp.Header.Get("Content-Type")) {
		var envelope struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			if envelope.Message != "" {
				apiErr.Message = envelope.Message
			} else {
				apiErr.Message = envelope.Error
			}
		}
	}
	return apiErr
}

// kickLogin starts a fresh login flow after a terminal denial. Best effort;
// the denial error is what the caller sees either way.
func (c *Client) kickLogin(ctx context.Context) {
	authURL, err := c.creds.Login(ctx, "")
	if err != nil {
		c.logger.Warn("login kick after terminal denial failed", "error", err)
		return
	}
	c.logger.Info("re-authentication required", "auth_url", authURL)
}

// resolve joins a relative path onto the base URL. Absolute URLs pass through
// untouched.
func (c *Client) resolve(path string) (string, error) {
	if path == "" {
		return "", apperrors.Validation("request path cannot be empty")
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, "parse request path")
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// GetAll fetches several paths concurrently and returns the raw JSON bodies in
// input order. The first failure cancels the remaining requests.
func (c *Client) GetAll(ctx context.Context, paths []string, opts ...RequestOption) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			var raw json.RawMessage
			if err := c.Get(ctx, path, &raw, opts...); err != nil {
				return err
			}
			results[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// drain discards and closes the response body so the connection can be reused.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s", e.Status)
}
