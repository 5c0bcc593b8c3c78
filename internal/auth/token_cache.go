// Package auth provides client-credentials access tokens for the Spotify
// Web API with in-memory caching.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrAuthenticationFailure is returned when a token exchange fails.
	ErrAuthenticationFailure = errors.New("failed to authenticate with Spotify")

	// ErrEmptyToken is returned when the exchange succeeds without a token value.
	ErrEmptyToken = errors.New("token endpoint returned an empty access token")
)

// AccessToken is a bearer token and the instant it stops being usable.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used at now.
func (t AccessToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// Exchanger trades client credentials for a new token value and its lifetime.
type Exchanger interface {
	Exchange(ctx context.Context) (value string, ttl time.Duration, err error)
}

// ExchangerFunc adapts a function to the Exchanger interface.
type ExchangerFunc func(ctx context.Context) (string, time.Duration, error)

// Exchange calls f(ctx).
func (f ExchangerFunc) Exchange(ctx context.Context) (string, time.Duration, error) {
	return f(ctx)
}

// TokenCache holds the current access token and refreshes it through an
// Exchanger once it expires. The token is always replaced wholesale.
type TokenCache struct {
	exchanger Exchanger
	now       func() time.Time
	logger    *zap.Logger

	mu    sync.Mutex
	token *AccessToken
}

// Option configures a TokenCache.
type Option func(*TokenCache)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCache) {
		c.now = now
	}
}

// WithLogger sets the logger used to report refreshes.
func WithLogger(logger *zap.Logger) Option {
	return func(c *TokenCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTokenCache creates an empty cache backed by exchanger.
func NewTokenCache(exchanger Exchanger, opts ...Option) *TokenCache {
	c := &TokenCache{
		exchanger: exchanger,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the cached token while it is valid, otherwise exchanges
// credentials for a new one. Failures wrap ErrAuthenticationFailure and
// leave the cache untouched; no retry is attempted.
func (c *TokenCache) Token(ctx context.Context) (AccessToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.Valid(c.now()) {
		return *c.token, nil
	}

	value, ttl, err := c.exchanger.Exchange(ctx)
	if err != nil {
		c.logger.Warn("token exchange failed", zap.Error(err))
		return AccessToken{}, fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
	}
	if value == "" {
		return AccessToken{}, fmt.Errorf("%w: %w", ErrAuthenticationFailure, ErrEmptyToken)
	}

	token := &AccessToken{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.token = token

	c.logger.Debug("refreshed access token", zap.Time("expires_at", token.ExpiresAt))
	return *token, nil
}

// Peek returns the cached token without refreshing it.
func (c *TokenCache) Peek() (AccessToken, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return AccessToken{}, false
	}
	return *c.token, true
}

// Invalidate drops the cached token so the next call exchanges again.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}
