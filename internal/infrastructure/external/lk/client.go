// Package lk implements the personal cabinet client.
// It logs in with the site's CSRF-protected form, keeps the session cookies in
// its own jar and downloads the lesson list for a date range.
package lk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
	"github.com/lk-schedule/schedule-hub/pkg/retry"
	"github.com/lk-schedule/schedule-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

const (
	pathLoginPage = "/distancelearning"
	pathLogin     = "/site/login"
	pathLessons   = "/api/common/distancelearning"
	pathReferer   = "/distancelearning/distancelearning/index"

	cookieSession  = "PHPSESSID"
	cookieIdentity = "_identity"
)

// DefaultUserAgent is sent with every request; the site rejects bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"

// ClientConfig contains configuration for the cabinet client.
type ClientConfig struct {
	// BaseURL is the cabinet root, e.g. https://lk.samgtu.ru
	BaseURL string

	// Username and Password are the cabinet credentials.
	Username string
	Password string

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// MaxAttempts bounds retries of the lessons request.
	MaxAttempts int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:     baseURL,
		UserAgent:   DefaultUserAgent,
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the personal cabinet client. The session lives in its cookie jar.
type Client struct {
	config     ClientConfig
	baseURL    *url.URL
	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *slog.Logger

	mu            sync.Mutex
	authenticated bool
}

// NewClient creates a new cabinet client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("lk: invalid base URL %q", config.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("lk: create cookie jar: %w", err)
	}

	c := &Client{
		config:  config,
		baseURL: base,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
		},
		logger: config.Logger,
	}
	retryCfg := retry.CabinetConfig(config.MaxAttempts, shared.IsRetryable)
	retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Warn("cabinet request failed, retrying",
			"attempt", attempt,
			"delay", delay.String(),
			"error", err,
		)
	}
	c.retrier = retry.New(retryCfg)

	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// Authenticate reads the CSRF token from the login page and posts the login
// form. It succeeds only if the session and identity cookies are set.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.authenticate(ctx)
}

func (c *Client) authenticate(ctx context.Context) error {
	csrf, err := c.fetchCSRF(ctx)
	if err != nil {
		return err
	}

	form := url.Values{
		"_csrf":                 {csrf},
		"LoginForm[username]":   {c.config.Username},
		"LoginForm[password]":   {c.config.Password},
		"LoginForm[rememberMe]": {"1"},
	}

	req, err := c.newRequest(ctx, http.MethodPost, pathLogin, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.WrapError("lk", "Authenticate", shared.ErrServiceUnavailable, "login request failed", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return shared.WrapError("lk", "Authenticate", shared.ErrServiceUnavailable,
			fmt.Sprintf("login returned status %d", resp.StatusCode), nil)
	}

	if !c.hasCookie(cookieSession) || !c.hasCookie(cookieIdentity) {
		return shared.WrapError("lk", "Authenticate", shared.ErrCabinetLoginFailed,
			"session cookies not set, check username and password", nil)
	}

	c.authenticated = true
	c.logger.Info("cabinet login succeeded", "user", c.config.Username)
	return nil
}

func (c *Client) fetchCSRF(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathLoginPage, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", shared.WrapError("lk", "Authenticate", shared.ErrServiceUnavailable, "login page request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", shared.WrapError("lk", "Authenticate", shared.ErrServiceUnavailable,
			fmt.Sprintf("login page returned status %d", resp.StatusCode), nil)
	}

	csrf, err := extractCSRF(resp.Body)
	if err != nil {
		return "", shared.WrapError("lk", "Authenticate", shared.ErrCabinetInvalidResponse, "no CSRF token", err)
	}
	return csrf, nil
}

func (c *Client) hasCookie(name string) bool {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == name && ck.Value != "" {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSONS
// ══════════════════════════════════════════════════════════════════════════════

// FetchLessons logs in if needed and returns the lessons between start and end.
func (c *Client) FetchLessons(ctx context.Context, start, end time.Time) ([]lesson.RawRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.authenticated {
		if err := c.authenticate(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("start", timeutil.FormatAPITimestamp(start))
	params.Set("end", timeutil.FormatAPITimestamp(end))
	path := pathLessons + "?" + params.Encode()

	var records []lesson.RawRecord
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		records, err = c.getLessons(ctx, path)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			c.authenticated = false
		}
		return nil, err
	}

	c.logger.Info("lessons fetched",
		"count", len(records),
		"start", timeutil.FormatDate(start),
		"end", timeutil.FormatDate(end),
	)
	return records, nil
}

// getLessons performs a single lessons request.
// Transport errors, timeouts and 5xx responses map to kinds that
// shared.IsRetryable accepts; everything else is final.
func (c *Client) getLessons(ctx context.Context, path string) ([]lesson.RawRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "ru,en;q=0.9")
	req.Header.Set("Referer", c.baseURL.String()+pathReferer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, shared.WrapError("lk", "FetchLessons", shared.ErrTimeout, "request timed out", err)
		}
		return nil, shared.WrapError("lk", "FetchLessons", shared.ErrServiceUnavailable, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, shared.WrapError("lk", "FetchLessons", shared.ErrCabinetLoginFailed,
			fmt.Sprintf("session rejected with status %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, shared.WrapError("lk", "FetchLessons", shared.ErrServiceUnavailable,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, shared.WrapError("lk", "FetchLessons", shared.ErrCabinetInvalidResponse,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	return DecodeLessons(resp.Body)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("lk: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	return req, nil
}
