package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

func (t AccessToken) oauth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.Value,
		TokenType:   "Bearer",
		Expiry:      t.ExpiresAt,
	}
}

// cacheTokenSource adapts a TokenCache to oauth2.TokenSource.
type cacheTokenSource struct {
	ctx   context.Context
	cache *TokenCache
}

func (s cacheTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.cache.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	return token.oauth2Token(), nil
}

// TokenSource returns an oauth2.TokenSource that reads through the cache.
// ctx is used for every exchange the source triggers, so it should outlive
// the source; per-request callers want HTTPClient instead.
func (c *TokenCache) TokenSource(ctx context.Context) oauth2.TokenSource {
	return cacheTokenSource{ctx: ctx, cache: c}
}

// bearerTransport authorizes each request with the cached token. A refresh
// runs under the request's context, so cancelling the request cancels the
// exchange too.
type bearerTransport struct {
	cache *TokenCache
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.cache.Token(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	// RoundTrippers must not modify the caller's request.
	authed := req.Clone(req.Context())
	token.oauth2Token().SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}

// HTTPClient returns a client that attaches the cached bearer token to every
// request. The cache stays the only place that decides when to refresh.
func (c *TokenCache) HTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Transport: &bearerTransport{cache: c, base: transport},
		Timeout:   base.Timeout,
	}
}
