package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phoneshop/posclient/internal/client/models"
	"github.com/phoneshop/posclient/internal/client/session"
	"github.com/phoneshop/posclient/internal/common"
	"github.com/phoneshop/posclient/internal/logging"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Paths are the backend's auth endpoints, relative to the base URL.
type Paths struct {
	Login   string
	Me      string
	Refresh string
	Logout  string
}

func DefaultPaths() Paths {
	return Paths{
		Login:   "/auth/login",
		Me:      "/auth/me",
		Refresh: "/auth/refresh",
		Logout:  "/auth/logout",
	}
}

// HTTPClient talks to the REST backend on behalf of the session in store.
// It is safe for concurrent use.
type HTTPClient struct {
	baseURL        *url.URL
	http           *http.Client
	store          *session.Store
	log            logging.Logger
	paths          Paths
	refreshTimeout time.Duration

	refreshGroup singleflight.Group
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the transport. Its Timeout bounds every call.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithTimeout sets the per-call timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithPaths(p Paths) Option {
	return func(c *HTTPClient) { c.paths = p }
}

// WithRefreshTimeout bounds the shared refresh call, which runs detached
// from any single caller's context.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.refreshTimeout = d }
}

func New(baseURL string, store *session.Store, opts ...Option) (*HTTPClient, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL:        u,
		http:           &http.Client{Timeout: 30 * time.Second},
		store:          store,
		log:            logging.Nop(),
		paths:          DefaultPaths(),
		refreshTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "api-client")
	return c, nil
}

// Session exposes the read-only view of the session this client serves.
func (c *HTTPClient) Session() SessionView {
	return c.store
}

type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeAuthExpired
	outcomeFailure
)

// outcome is the result of one round trip. AuthExpired never leaves Do.
type outcome struct {
	kind outcomeKind
	resp *Response
	err  error
}

// Do sends spec with the current access token. A 401 triggers one refresh
// (shared with concurrent callers) and one retry; the retry's result is
// final. When the session cannot be recovered it is terminated and the
// original 401 is returned.
func (c *HTTPClient) Do(ctx context.Context, spec RequestSpec) (*Response, error) {
	body, err := encodeBody(spec.Body)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	log := c.log.With("request_id", requestID, "method", spec.Method, "path", spec.Path)

	sentToken := c.store.AccessToken()
	first := c.issue(ctx, spec, body, requestID, sentToken)
	if first.kind != outcomeAuthExpired {
		return first.resp, first.err
	}

	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Op: spec.Method + " " + spec.Path, Err: err}
	}

	log.Debug(ctx, "access token rejected, recovering session")
	freshToken, err := c.recoverSession(ctx, sentToken)
	if err != nil {
		// Only this caller's own cancellation is reported as such. Every
		// other recovery failure has ended the session and yields the 401.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &NetworkError{Op: spec.Method + " " + spec.Path, Err: ctxErr}
		}
		return nil, first.err
	}

	retry := c.issue(ctx, spec, body, requestID, freshToken)
	if retry.kind == outcomeAuthExpired {
		log.Warn(ctx, "retry rejected after refresh")
	}
	return retry.resp, retry.err
}

// issue performs a single round trip. An empty token sends no Authorization.
func (c *HTTPClient) issue(ctx context.Context, spec RequestSpec, body []byte, requestID, token string) outcome {
	op := spec.Method + " " + spec.Path

	u := c.baseURL.JoinPath(spec.Path)
	if len(spec.Query) > 0 {
		u.RawQuery = spec.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, spec.Method, u.String(), reader)
	if err != nil {
		return outcome{kind: outcomeFailure, err: fmt.Errorf("build request %s: %w", op, err)}
	}
	for k, vs := range spec.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return outcome{kind: outcomeFailure, err: &NetworkError{Op: op, Err: err}}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return outcome{kind: outcomeFailure, err: &NetworkError{Op: op, Err: err}}
	}

	resp := &Response{Status: res.StatusCode, Header: res.Header, Body: data}
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return outcome{kind: outcomeOK, resp: resp}
	case res.StatusCode == http.StatusUnauthorized:
		return outcome{kind: outcomeAuthExpired, err: &HTTPError{Status: res.StatusCode, Body: data}}
	default:
		return outcome{kind: outcomeFailure, err: &HTTPError{Status: res.StatusCode, Body: data}}
	}
}

// recoverSession returns an access token to retry with. sentToken is the
// token the rejected request carried; if the session already holds a
// different one, another caller has rotated it and no refresh is needed.
func (c *HTTPClient) recoverSession(ctx context.Context, sentToken string) (string, error) {
	if current := c.store.AccessToken(); current != "" && current != sentToken {
		return current, nil
	}

	// The shared refresh must outlive whichever caller happened to start it.
	detached := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return c.refresh(detached, sentToken)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// refresh exchanges the refresh token for a new pair. Any failure ends the
// session.
func (c *HTTPClient) refresh(ctx context.Context, sentToken string) (string, error) {
	// Repeated here for callers that join after the flight that rotated.
	if current := c.store.AccessToken(); current != "" && current != sentToken {
		return current, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
	defer cancel()

	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		c.endSession(ctx, "no refresh token")
		return "", errRefreshFailed
	}

	body, err := json.Marshal(models.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		c.endSession(ctx, "encode refresh request", "error", err)
		return "", errRefreshFailed
	}

	spec := RequestSpec{Method: http.MethodPost, Path: c.paths.Refresh}
	out := c.issue(ctx, spec, body, uuid.NewString(), "")
	if out.kind != outcomeOK {
		c.endSession(ctx, "refresh rejected", "error", out.err)
		return "", errRefreshFailed
	}

	var ar models.AuthResponse
	if err := json.Unmarshal(out.resp.Body, &ar); err != nil {
		c.endSession(ctx, "refresh response undecodable", "error", err)
		return "", errRefreshFailed
	}
	pair := ar.Tokens()
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		c.endSession(ctx, "refresh response lacks a token pair")
		return "", errRefreshFailed
	}

	if err := c.store.RotateTokens(ctx, pair.AccessToken, &pair.RefreshToken); err != nil {
		c.endSession(ctx, "storing refreshed tokens failed", "error", err)
		return "", errRefreshFailed
	}

	c.log.Info(ctx, "access token refreshed")
	return pair.AccessToken, nil
}

func (c *HTTPClient) endSession(ctx context.Context, reason string, args ...any) {
	c.log.Warn(ctx, "session ended: "+reason, args...)
	if err := c.store.Terminate(ctx); err != nil {
		c.log.Error(ctx, "terminate session", "error", err)
	}
}
