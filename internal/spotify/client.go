// Package spotify provides a wrapper around the Spotify Web API for track
// metadata lookups authenticated with client credentials.
package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/justestif/music-blast/internal/auth"
)

// ErrMetadataFetchFailure is returned when the Web API call fails after a
// token was obtained.
var ErrMetadataFetchFailure = errors.New("spotify metadata fetch failed")

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api    *spotify.Client
	tokens *auth.TokenCache
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// WithBaseURL points the client at an alternative API root (must end in "/").
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithTimeout sets the HTTP timeout for API calls.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a client whose requests are authenticated through tokens.
// Token exchanges run under the context of the API call that needs them.
func New(tokens *auth.TokenCache, opts ...Option) *Client {
	o := options{
		timeout: 10 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := tokens.HTTPClient(&http.Client{Timeout: o.timeout})

	var apiOpts []spotify.ClientOption
	if o.baseURL != "" {
		apiOpts = append(apiOpts, spotify.WithBaseURL(o.baseURL))
	}

	return &Client{
		api:    spotify.New(httpClient, apiOpts...),
		tokens: tokens,
		logger: o.logger,
	}
}

// wrapError classifies an API error. Token failures keep their
// auth.ErrAuthenticationFailure identity; everything else is a metadata
// failure. A 401 drops the cached token so the next call re-authenticates.
func (c *Client) wrapError(op string, err error) error {
	if errors.Is(err, auth.ErrAuthenticationFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}

	c.logger.Warn("spotify request failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrMetadataFetchFailure, op, err)
}
