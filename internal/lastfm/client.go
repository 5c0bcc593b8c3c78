package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"
	userAgent      = "music-blast/1.0"
)

// Last.fm API error codes.
const (
	errCodeInvalidParams = 6
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API rate limit is exceeded after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrNotFound is returned when Last.fm does not know the track or artist.
	ErrNotFound = errors.New("not found on Last.fm")
)

// Rate-limited requests are retried after 1s, 2s and 4s.
const (
	defaultRetryBase = time.Second
	maxRetries       = 3
)

// Client is a Last.fm API client with caching and rate limit retries.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	retryBase  time.Duration
	logger     *zap.Logger

	// Keyed by "track:{artist}:{track}" or "artist:{artist}"
	cache   map[string][]Tag
	cacheMu sync.RWMutex
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryBase sets the first retry delay; later retries double it.
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) {
		c.retryBase = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Last.fm API client.
func NewClient(cfg *Config, opts ...Option) *Client {
	c := &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   defaultBaseURL,
		retryBase: defaultRetryBase,
		logger:    zap.NewNop(),
		cache:     make(map[string][]Tag),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetTags fetches tags for a track, falling back to artist tags if the
// track has none or Last.fm does not know it. Results are cached in memory.
// Returns an empty slice (not nil) if no tags are found.
func (c *Client) GetTags(ctx context.Context, artist, track string) ([]Tag, error) {
	tags, err := c.topTags(ctx, "track:"+artist+":"+track, url.Values{
		"method": {"track.getTopTags"},
		"artist": {artist},
		"track":  {track},
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("fetching track tags: %w", err)
	}
	if len(tags) > 0 {
		return tags, nil
	}

	tags, err = c.topTags(ctx, "artist:"+artist, url.Values{
		"method": {"artist.getTopTags"},
		"artist": {artist},
	})
	if errors.Is(err, ErrNotFound) {
		return []Tag{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching artist tags: %w", err)
	}
	return tags, nil
}

// Hints returns up to limit lower-cased tag names for a track, most popular
// first, with duplicates removed.
func (c *Client) Hints(ctx context.Context, artist, track string, limit int) ([]string, error) {
	tags, err := c.GetTags(ctx, artist, track)
	if err != nil {
		return nil, err
	}
	return tagNames(tags, limit), nil
}

func tagNames(tags []Tag, limit int) []string {
	if limit <= 0 {
		limit = len(tags)
	}

	seen := make(map[string]bool, len(tags))
	names := make([]string, 0, min(limit, len(tags)))
	for _, tag := range tags {
		name := strings.ToLower(strings.TrimSpace(tag.Name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) == limit {
			break
		}
	}
	return names
}

func (c *Client) topTags(ctx context.Context, cacheKey string, params url.Values) ([]Tag, error) {
	c.cacheMu.RLock()
	cached, ok := c.cache[cacheKey]
	c.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	params.Set("autocorrect", "1")
	params.Set("format", "json")
	params.Set("api_key", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp topTagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing tags response: %w", err)
	}

	tags := resp.TopTags.Tag
	if tags == nil {
		tags = []Tag{}
	}

	c.cacheMu.Lock()
	c.cache[cacheKey] = tags
	c.cacheMu.Unlock()

	return tags, nil
}

// doRequest performs a GET, retrying rate-limited attempts with
// exponential backoff. Other errors fail immediately.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	var body []byte
	operation := func() error {
		b, err := c.doSingleRequest(ctx, reqURL)
		if errors.Is(err, ErrRateLimited) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		body = b
		return nil
	}

	notify := func(err error, delay time.Duration) {
		c.logger.Debug("last.fm rate limited, retrying", zap.Duration("delay", delay))
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBase
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.retryBase << maxRetries
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)
}

func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Errors come back as JSON, sometimes with a 200 status.
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		case errCodeInvalidParams:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
