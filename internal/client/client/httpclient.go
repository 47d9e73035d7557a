package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/notify"
	"github.com/dmitrijs2005/vmgen/internal/common"
	"github.com/dmitrijs2005/vmgen/internal/logging"
	"github.com/dmitrijs2005/vmgen/internal/netx"
	"golang.org/x/sync/singleflight"
)

const (
	RefreshPath = "/auth/refresh"
	HealthPath  = "/health"

	DefaultProbeTimeout = 3 * time.Second
)

// Session is the part of the session store the client needs.
type Session interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

type Options struct {
	RemoteURL string
	LocalURL  string
	// Local starts on LocalURL and disables token refresh and the fallback.
	Local        bool
	ProbeTimeout time.Duration

	HTTP     *http.Client
	Session  Session
	Notifier notify.Notifier
	Logger   logging.Logger
}

// HTTPClient executes requests against the backend and applies the session
// policy: bearer injection, token capture, single-flight refresh on 401,
// a one-time fallback to the local backend, and error toasts.
//
// It is safe for concurrent use.
type HTTPClient struct {
	hc           *http.Client
	session      Session
	notifier     notify.Notifier
	log          logging.Logger
	remoteURL    string
	localURL     string
	local        bool
	probeTimeout time.Duration

	mu       sync.RWMutex
	baseURL  string
	fallback bool

	probeOnce sync.Once
	probeErr  error

	refresh singleflight.Group
}

func New(opts Options) *HTTPClient {
	c := &HTTPClient{
		hc:           opts.HTTP,
		session:      opts.Session,
		notifier:     opts.Notifier,
		log:          opts.Logger,
		remoteURL:    opts.RemoteURL,
		localURL:     opts.LocalURL,
		local:        opts.Local,
		probeTimeout: opts.ProbeTimeout,
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.notifier == nil {
		c.notifier = notify.Discard
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	if c.probeTimeout <= 0 {
		c.probeTimeout = DefaultProbeTimeout
	}
	c.baseURL = c.remoteURL
	if c.local {
		c.baseURL = c.localURL
	}
	return c
}

// BaseURL is the URL requests are currently sent to.
func (c *HTTPClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// UsingFallback reports whether the client was rebound to the local backend.
func (c *HTTPClient) UsingFallback() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fallback
}

func (c *HTTPClient) IsLocal() bool { return c.local }

// Close releases idle connections.
func (c *HTTPClient) Close() {
	c.hc.CloseIdleConnections()
}

// Ping checks the health endpoint of the current base URL.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: HealthPath})
	return err
}

func (c *HTTPClient) accessToken() string {
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken()
}

// Do sends r and returns the buffered 2xx response. Every other outcome is
// returned as one of the typed errors in this package.
func (c *HTTPClient) Do(ctx context.Context, r Request) (*Response, error) {
	var (
		retried  bool
		fellBack bool
	)
	for {
		base := c.BaseURL()
		token := c.accessToken()

		resp, err := c.send(ctx, base, token, r)
		if err != nil {
			if ctx.Err() == nil && !fellBack && c.tryFallback(ctx, base) {
				fellBack = true
				c.log.Info(ctx, "replaying request against local backend", "path", r.Path)
				continue
			}
			nerr := &NetworkError{Method: r.Method, URL: r.url(base), Err: err}
			c.report(ctx, r, nerr)
			return nil, nerr
		}

		if resp.StatusCode == http.StatusUnauthorized && !retried && token != "" && c.refreshable(r) {
			retried = true
			if cur := c.accessToken(); cur != "" && cur != token {
				c.log.Debug(ctx, "token changed while in flight, replaying", "path", r.Path)
				continue
			}
			if err := c.refreshTokens(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			herr := newHTTPError(r.Method, r.Path, resp.StatusCode, resp.Body)
			c.log.Debug(ctx, "request rejected", "method", r.Method, "path", r.Path, "status", resp.StatusCode)
			c.report(ctx, r, herr)
			return nil, herr
		}

		if access, refresh, ok := resp.tokenPair(); ok && c.session != nil {
			if err := c.session.SetTokens(ctx, access, refresh); err != nil {
				return nil, fmt.Errorf("store tokens: %w", err)
			}
			c.log.Debug(ctx, "tokens captured from response", "path", r.Path)
		}
		return resp, nil
	}
}

// refreshable excludes local mode and the refresh call itself. Anonymous
// requests are never refreshed either; Do checks that at the call site.
func (c *HTTPClient) refreshable(r Request) bool {
	return !c.local && c.session != nil && r.Path != RefreshPath
}

func (c *HTTPClient) send(ctx context.Context, base, token string, r Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.url(base), body)
	if err != nil {
		return nil, err
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	accept := r.Accept
	if accept == "" {
		accept = common.ContentTypeJSON
	}
	req.Header.Set("Accept", accept)
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerValue(token))
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data, path: r.Path}, nil
}

// tryFallback reports whether a request that failed against base may be
// replayed against the local backend. The probe runs once per client;
// later callers reuse its outcome.
func (c *HTTPClient) tryFallback(ctx context.Context, base string) bool {
	if c.local || c.localURL == "" || base != c.remoteURL {
		return false
	}
	c.probeOnce.Do(func() {
		pctx := context.WithoutCancel(ctx)
		c.log.Warn(pctx, "remote backend unreachable, probing local backend", "local_url", c.localURL)
		c.probeErr = netx.Probe(pctx, c.hc, c.localURL+HealthPath, c.probeTimeout)
		if c.probeErr != nil {
			c.log.Warn(pctx, "local backend unreachable", "error", c.probeErr)
			return
		}
		c.mu.Lock()
		c.baseURL = c.localURL
		c.fallback = true
		c.mu.Unlock()
		c.notifier.Notify(notify.Toast{
			Type:     notify.Info,
			Title:    FallbackToastTitle,
			Message:  FallbackToastMessage,
			Duration: FallbackToastDuration,
		})
	})
	return c.probeErr == nil
}

// refreshTokens joins the in-flight refresh or starts one. The refresh runs
// detached from any single caller's cancellation.
func (c *HTTPClient) refreshTokens(ctx context.Context) error {
	ch := c.refresh.DoChan("refresh", func() (any, error) {
		return nil, c.runRefresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *HTTPClient) runRefresh(ctx context.Context) error {
	rt := c.session.RefreshToken()
	if rt == "" {
		return c.expire(ctx, ErrNoRefreshToken)
	}

	req, err := JSONRequest(http.MethodPost, RefreshPath, models.RefreshRequest{RefreshToken: rt})
	if err != nil {
		return c.expire(ctx, err)
	}
	base := c.BaseURL()
	resp, err := c.send(ctx, base, "", req)
	if err != nil {
		return c.expire(ctx, &NetworkError{Method: req.Method, URL: req.url(base), Err: err})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.expire(ctx, newHTTPError(req.Method, req.Path, resp.StatusCode, resp.Body))
	}

	var tokens models.TokenResponse
	if err := resp.JSON(&tokens); err != nil {
		return c.expire(ctx, err)
	}
	if err := c.session.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return c.expire(ctx, err)
	}
	c.log.Info(ctx, "access token refreshed")
	return nil
}

// expire ends the session after a failed refresh and reports it once.
func (c *HTTPClient) expire(ctx context.Context, cause error) error {
	c.log.Warn(ctx, "token refresh failed, logging out", "error", cause)
	if err := c.session.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
	rerr := &RefreshError{Err: cause}
	c.notifier.Notify(notify.Toast{
		Type:     notify.Error,
		Title:    ErrorToastTitle,
		Message:  MessageFor(rerr),
		Duration: ErrorToastDuration,
	})
	return rerr
}

func (c *HTTPClient) report(ctx context.Context, r Request, err error) {
	if r.Path == RefreshPath || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return
	}
	c.notifier.Notify(notify.Toast{
		Type:     notify.Error,
		Title:    ErrorToastTitle,
		Message:  MessageFor(err),
		Duration: ErrorToastDuration,
	})
}
