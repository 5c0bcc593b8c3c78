package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrMissingCredentials is returned when the client id or secret is empty.
var ErrMissingCredentials = errors.New("missing Spotify client id or secret")

// ClientCredentials exchanges an app's client id and secret for an access
// token using the OAuth2 client-credentials grant.
type ClientCredentials struct {
	config     *clientcredentials.Config
	httpClient *http.Client
}

// CredentialsOption configures a ClientCredentials exchanger.
type CredentialsOption func(*ClientCredentials)

// WithTokenURL overrides the token endpoint.
func WithTokenURL(url string) CredentialsOption {
	return func(c *ClientCredentials) {
		c.config.TokenURL = url
	}
}

// WithHTTPClient sets the HTTP client used for the exchange.
func WithHTTPClient(client *http.Client) CredentialsOption {
	return func(c *ClientCredentials) {
		c.httpClient = client
	}
}

// NewClientCredentials creates an exchanger for Spotify's token endpoint.
// Returns ErrMissingCredentials if either value is empty.
func NewClientCredentials(clientID, clientSecret string, opts ...CredentialsOption) (*ClientCredentials, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	c := &ClientCredentials{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
			// Spotify expects the credentials as a Basic auth header.
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Exchange posts grant_type=client_credentials and returns the token value
// with its lifetime as reported by expires_in.
func (c *ClientCredentials) Exchange(ctx context.Context) (string, time.Duration, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.config.Token(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("requesting client credentials token: %w", err)
	}

	return token.AccessToken, tokenTTL(token), nil
}

// tokenTTL reads expires_in from the raw response, falling back to the
// absolute expiry computed by oauth2.
func tokenTTL(token *oauth2.Token) time.Duration {
	switch v := token.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case string:
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	if !token.Expiry.IsZero() {
		return time.Until(token.Expiry)
	}
	return 0
}
