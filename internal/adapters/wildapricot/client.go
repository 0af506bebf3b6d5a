// Package wildapricot implements the membership API client over HTTPS with
// OAuth client-credentials authentication and client-side rate limiting.
package wildapricot

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

	"golang.org/x/time/rate"

	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/secondary"
)

// Defaults for asynchronous contact queries.
const (
	DefaultPollInterval = 1500 * time.Millisecond
	DefaultMaxPolls     = 10
)

// Tokens are refreshed this long before the server-side expiry.
const tokenExpirySkew = 60 * time.Second

const defaultTokenLifetime = 1800 * time.Second

// APIError is a non-2xx response from the API or the OAuth endpoint.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s failed: %d %s", e.Method, e.URL, e.StatusCode, body)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	OAuthURL     string
	ClientID     string
	ClientSecret string

	HTTPClient *http.Client
	// RequestsPerSecond paces every outgoing call; zero disables pacing.
	RequestsPerSecond float64
	Tokens            secondary.TokenStore
	Logger            *logging.Logger

	Now          func() time.Time
	Sleep        func(ctx context.Context, d time.Duration) error
	PollInterval time.Duration
	MaxPolls     int
}

// Client implements secondary.WildApricotClient.
type Client struct {
	baseURL      string
	oauthURL     string
	clientID     string
	clientSecret string

	http    *http.Client
	limiter *rate.Limiter
	tokens  secondary.TokenStore
	log     *logging.Logger

	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
	pollInterval time.Duration
	maxPolls     int
}

// NewClient creates a new API client.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:      opts.BaseURL,
		oauthURL:     opts.OAuthURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		http:         opts.HTTPClient,
		tokens:       opts.Tokens,
		log:          opts.Logger,
		now:          opts.Now,
		sleep:        opts.Sleep,
		pollInterval: opts.PollInterval,
		maxPolls:     opts.MaxPolls,
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if c.tokens == nil {
		c.tokens = NewMemoryTokenStore()
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.maxPolls <= 0 {
		c.maxPolls = DefaultMaxPolls
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) tokenKey() string {
	return c.oauthURL + "|" + c.clientID
}

// accessToken returns a cached bearer token or requests a new one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if tok, ok := c.tokens.Get(c.tokenKey()); ok && tok.Valid(c.now()) {
		return tok.Value, nil
	}

	if c.clientID == "" || c.clientSecret == "" {
		return "", errors.New("missing client credentials")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "auto")

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Method: http.MethodPost, URL: c.oauthURL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("token response has no access_token")
	}

	lifetime := defaultTokenLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}
	c.tokens.Put(c.tokenKey(), &secondary.AccessToken{
		Value:     tr.AccessToken,
		ExpiresAt: c.now().Add(lifetime - tokenExpirySkew),
	})
	c.log.Tracef("obtained access token valid for %s", lifetime)

	return tr.AccessToken, nil
}

// resolve turns an endpoint into an absolute URL. Absolute URLs (such as an
// asynchronous ResultUrl) are used as-is.
func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		return endpoint
	}
	return c.baseURL + strings.TrimPrefix(endpoint, "/")
}

// transportError is a request that produced no HTTP response.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// do performs an authenticated request and returns the body of a 2xx response.
// A 401 drops the cached token and retries once.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	target := c.resolve(endpoint)
	for attempt := 0; ; attempt++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.log.Debugf("%s %s", method, target)
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &transportError{err: err}
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &transportError{err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			c.tokens.Put(c.tokenKey(), nil)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &APIError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: string(respBody)}
		}
		return respBody, nil
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return nil
}

// Ping checks that the API host is reachable over TLS without authenticating.
// Any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("accounts"), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
