// Package client is the marketplace API client. Every request passes through
// the Authorizer on the way out and through Response Recovery on the way back:
// a 401 on a protected path triggers one token refresh and one retry, and an
// unrecoverable 401 ends the session.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/notify"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries one id per logical request; a retry reuses it.
const RequestIDHeader = "X-Request-ID"

// SessionStore is the part of the session the client reads and mutates.
type SessionStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(ctx context.Context, tokens session.Tokens) error
	Clear(ctx context.Context) error
}

var _ SessionStore = (*session.Manager)(nil)

type Client struct {
	base       *url.URL
	httpClient *http.Client
	sessions   SessionStore
	paths      *PathMatcher
	authorizer *Authorizer
	plain      *Plain
	refresher  *Refresher
	logger     zerolog.Logger

	notifier      notify.Notifier
	navigator     notify.Navigator
	redirectDelay time.Duration
	entryPath     string
	refreshPath   string
	limiter       *rate.Limiter
	metrics       *Metrics
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://127.0.0.1:8000/api/".
func New(baseURL string, sessions SessionStore, opts ...Option) (*Client, error) {
	if sessions == nil {
		return nil, fmt.Errorf("[Client New] %w: session store is required", lmserrors.ErrInvalidRequest)
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[Client New] %w", err)
	}

	c := &Client{
		base:          base,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		sessions:      sessions,
		paths:         DefaultPathMatcher(base.Path),
		logger:        log.Logger,
		notifier:      notify.Discard,
		navigator:     notify.Discard,
		redirectDelay: DefaultRedirectDelay,
		entryPath:     DefaultEntryPath,
		refreshPath:   DefaultRefreshPath,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.plain = &Plain{base: base, httpClient: c.httpClient}
	c.refresher = NewRefresher(c.plain, c.refreshPath)
	c.authorizer = NewAuthorizer(base.Host, c.paths, sessions, c.logger)
	return c, nil
}

// Plain returns the unauthenticated client sharing this client's transport.
func (c *Client) Plain() *Plain {
	return c.plain
}

func (c *Client) Paths() *PathMatcher {
	return c.paths
}

// call is one logical request. The body is encoded once so a retry resends
// identical bytes.
type call struct {
	req         *Request
	method      string
	body        []byte
	contentType string
	requestID   string
}

// Do sends r and returns its 2xx response. Failures are returned as
// *APIError, or wrap ErrSessionExpired when the session had to be ended.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	if r == nil {
		return nil, fmt.Errorf("[Client Do] %w: nil request", lmserrors.ErrInvalidRequest)
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	body, contentType, err := encodeBody(r)
	if err != nil {
		return nil, fmt.Errorf("[Client Do] %w", err)
	}
	return c.send(ctx, &call{
		req:         r,
		method:      method,
		body:        body,
		contentType: contentType,
		requestID:   uuid.NewString(),
	}, false)
}

func (c *Client) send(ctx context.Context, cl *call, retried bool) (*Response, error) {
	resp, public, err := c.roundTrip(ctx, cl)
	if err != nil {
		return nil, err
	}
	if isSuccess(resp.StatusCode) {
		return resp, nil
	}

	apiErr := &APIError{Method: cl.method, Path: cl.req.Path, StatusCode: resp.StatusCode, Body: resp.Body}
	if resp.StatusCode != http.StatusUnauthorized || retried || public {
		return nil, apiErr
	}
	return c.recoverUnauthorized(ctx, cl, apiErr)
}

// recoverUnauthorized refreshes the access token once and retries cl once.
func (c *Client) recoverUnauthorized(ctx context.Context, cl *call, cause *APIError) (*Response, error) {
	logger := c.logger.With().Str("request_id", cl.requestID).Str("path", cl.req.Path).Logger()

	refreshToken := c.sessions.RefreshToken()
	if refreshToken == "" {
		c.metrics.observeRefresh(RefreshSkipped)
		logger.Info().Msg("401 with no refresh token")
		return nil, c.expire(ctx, fmt.Errorf("%w: %w", ErrNoRefreshToken, cause))
	}

	access, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		c.metrics.observeRefresh(RefreshFailure)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("[Client Do] refresh abandoned: %w", err)
		}
		logger.Warn().Err(err).Msg("token refresh failed")
		return nil, c.expire(ctx, err)
	}
	c.metrics.observeRefresh(RefreshSuccess)

	if err := c.sessions.SetTokens(ctx, session.Tokens{Access: access, Refresh: refreshToken}); err != nil {
		return nil, fmt.Errorf("[Client Do] failed to store refreshed token: %w", err)
	}
	logger.Debug().Msg("access token refreshed, retrying")
	return c.send(ctx, cl, true)
}

// expire ends the session: tokens, role and profile are cleared, the user is
// told, and after the redirect delay they are sent to the entry page.
func (c *Client) expire(ctx context.Context, cause error) error {
	c.metrics.observeExpired()
	if err := c.sessions.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear expired session")
	}
	c.notifier.ShowError(SessionExpiredMessage)

	navCtx := context.WithoutCancel(ctx)
	time.AfterFunc(c.redirectDelay, func() {
		c.navigator.Navigate(navCtx, c.entryPath)
	})
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// roundTrip performs a single HTTP exchange and reports whether the path was
// public.
func (c *Client) roundTrip(ctx context.Context, cl *call) (*Response, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, fmt.Errorf("[Client Do] rate limit: %w", err)
		}
	}

	target, err := resolveURL(c.base, cl.req.Path, cl.req.Query)
	if err != nil {
		return nil, false, fmt.Errorf("[Client Do] %w", err)
	}
	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, false, fmt.Errorf("[Client Do] failed to build request: %w", err)
	}

	if cl.body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", contentTypeJSON)
	for k, vs := range cl.req.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set(RequestIDHeader, cl.requestID)

	isMultipart := cl.req.Form != nil
	// Classify the URL actually sent, not the caller's spelling of it.
	public := c.authorizer.Authorize(req, target, isMultipart)
	if isMultipart {
		req.Header.Set("Content-Type", cl.contentType)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(cl.method, 0, public, time.Since(start))
		return nil, public, fmt.Errorf("[Client Do] %s %s: %w", cl.method, cl.req.Path, err)
	}
	resp, err := readResponse(httpResp)
	c.metrics.observeRequest(cl.method, httpResp.StatusCode, public, time.Since(start))
	if err != nil {
		return nil, public, fmt.Errorf("[Client Do] %w", err)
	}

	c.logger.Debug().
		Str("request_id", cl.requestID).
		Str("method", cl.method).
		Str("path", cl.req.Path).
		Bool("public", public).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")
	return resp, public, nil
}

func (c *Client) doDecode(ctx context.Context, r *Request, out any) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doDecode(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doDecode(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doDecode(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doDecode(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doDecode(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *MultipartForm, out any) error {
	return c.doDecode(ctx, &Request{Method: http.MethodPost, Path: path, Form: form}, out)
}

func (c *Client) PutMultipart(ctx context.Context, path string, form *MultipartForm, out any) error {
	return c.doDecode(ctx, &Request{Method: http.MethodPut, Path: path, Form: form}, out)
}
