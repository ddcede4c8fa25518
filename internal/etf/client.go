package etf

import (
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
	"github.com/rs/zerolog"

	"github.com/guadaltel/etf-result-checker/internal/logging"
)

// Client errors.
var (
	// ErrNotFound is returned by catalog lookups with no matching entry.
	ErrNotFound = errors.New("item not found in remote catalog")

	// ErrRemoteInvocation wraps submission and polling failures.
	ErrRemoteInvocation = errors.New("remote invocation failed")
)

// DefaultTimeout bounds every remote call, sized for test data uploads.
const DefaultTimeout = 45 * time.Minute

// DefaultPollInterval is how often a started run is polled for progress.
const DefaultPollInterval = 2 * time.Second

// Client talks to one ETF validation service instance.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	username     string
	password     string
	pollInterval time.Duration
	sessionID    string
	logger       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth enables HTTP basic authentication on every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithPollInterval overrides the run progress polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the service at base URL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint URL must use http or https, got %q", u.Scheme)
	}

	c := &Client{
		baseURL:      u,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		pollInterval: DefaultPollInterval,
		sessionID:    uuid.NewString(),
		logger:       logging.Component("etf-client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug().
		Str("endpoint", logging.RedactURL(rawURL)).
		Str("session_id", c.sessionID).
		Msg("client created")

	return c, nil
}

// SessionID returns the per-process session identifier sent with every
// request.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Available probes the service heartbeat endpoint.
func (c *Client) Available(ctx context.Context) bool {
	req, err := c.newRequest(ctx, http.MethodGet, "v2/heartbeat", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("heartbeat failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent
}

// newRequest builds a request against the service base URL with session
// and auth headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(strings.Split(path, "/")...)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Etf-Session", c.sessionID)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return req, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrRemoteInvocation, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s: unexpected status %d", ErrRemoteInvocation, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: GET %s: decoding response: %v", ErrRemoteInvocation, path, err)
	}
	return nil
}

// postJSON performs a POST request with a JSON body and decodes the JSON
// response into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request for POST %s: %w", path, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrRemoteInvocation, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: POST %s: unexpected status %d", ErrRemoteInvocation, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: POST %s: decoding response: %v", ErrRemoteInvocation, path, err)
	}
	return nil
}
