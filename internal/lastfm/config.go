// Package lastfm fetches Last.fm genre tags used as hints during a round.
package lastfm

import (
	"errors"
	"strings"
)

// ErrMissingAPIKey is returned when no Last.fm API key is configured.
var ErrMissingAPIKey = errors.New("missing Last.fm API key")

// Config holds Last.fm API configuration.
type Config struct {
	APIKey string
}

// NewConfig validates apiKey. Returns ErrMissingAPIKey if it is blank.
func NewConfig(apiKey string) (*Config, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Config{APIKey: apiKey}, nil
}
