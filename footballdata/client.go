package footballdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const maxResponseBytes = 8 << 20

// ErrUnavailable is wrapped by every failed provider call, whether the
// request never completed or the provider answered with a non-2xx status
var ErrUnavailable = errors.New("football-data provider unavailable")

// StatusError is returned for non-2xx responses
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("football-data %s: bad response status %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnavailable
}

// Config is the explicit provider configuration handed to NewClient
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The auth transport is
// still installed on top of the given client's transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCache enables read-through caching of the detail endpoints
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// Client talks to the football-data.org v4 API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
}

// NewClient builds a client from cfg
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("football-data API key is not configured")
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid football-data base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &authTransport{transport: base, token: cfg.APIKey}
	c.httpClient = &wrapped

	return c, nil
}

// authTransport sets the X-Auth-Token header on every request
type authTransport struct {
	transport http.RoundTripper
	token     string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Auth-Token", t.token)
	req.Header.Set("Accept", "application/json")
	return t.transport.RoundTrip(req)
}

// Competitions lists the competitions available to the API key
func (c *Client) Competitions(ctx context.Context) ([]Competition, error) {
	var resp competitionsResponse
	if err := c.get(ctx, "competitions", &resp); err != nil {
		return nil, err
	}
	return resp.Competitions, nil
}

// Matches lists every match of a competition's current season
func (c *Client) Matches(ctx context.Context, competitionCode string) ([]Match, error) {
	var resp matchesResponse
	if err := c.get(ctx, "competitions/"+url.PathEscape(competitionCode)+"/matches", &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Standings returns the competition's tables
func (c *Client) Standings(ctx context.Context, competitionCode string) ([]Standing, error) {
	var resp standingsResponse
	if err := c.getCached(ctx, "competitions/"+url.PathEscape(competitionCode)+"/standings", &resp); err != nil {
		return nil, err
	}
	return resp.Standings, nil
}

// TopScorers returns the competition's scorer ranking
func (c *Client) TopScorers(ctx context.Context, competitionCode string) ([]Scorer, error) {
	var resp scorersResponse
	if err := c.getCached(ctx, "competitions/"+url.PathEscape(competitionCode)+"/scorers", &resp); err != nil {
		return nil, err
	}
	return resp.Scorers, nil
}

// HeadToHead returns up to limit previous meetings of the match's teams
func (c *Client) HeadToHead(ctx context.Context, matchID int64, limit int) (*HeadToHead, error) {
	endpoint := "matches/" + strconv.FormatInt(matchID, 10) + "/head2head?limit=" + strconv.Itoa(limit)
	var resp HeadToHead
	if err := c.getCached(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Team returns a team with its squad
func (c *Client) Team(ctx context.Context, teamID int64) (*Team, error) {
	var resp Team
	if err := c.getCached(ctx, "teams/"+strconv.FormatInt(teamID, 10), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getCached serves endpoint from the cache when possible. Cache failures
// only cost a provider round trip.
func (c *Client) getCached(ctx context.Context, endpoint string, out any) error {
	if c.cache == nil {
		return c.get(ctx, endpoint, out)
	}

	key := "footballdata:" + endpoint
	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		log.WithFields(log.Fields{
			"endpoint": endpoint,
			"error":    err,
		}).Warn("Provider cache read failed")
	} else if ok {
		if err := json.Unmarshal(raw, out); err == nil {
			return nil
		}
	}

	raw, err := c.fetch(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode football-data %s: %w", endpoint, err)
	}
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
		log.WithFields(log.Fields{
			"endpoint": endpoint,
			"error":    err,
		}).Warn("Provider cache write failed")
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	raw, err := c.fetch(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode football-data %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	fullURL := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("football-data request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrUnavailable, endpoint, err)
	}
	return raw, nil
}
