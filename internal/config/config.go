// Package config loads music-blast settings from TOML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/justestif/music-blast/internal/logger"
	"github.com/justestif/music-blast/internal/scan"
)

const appName = "music-blast"

// Config is the full application configuration.
type Config struct {
	Addr        string        `koanf:"addr"`
	DatabaseURL string        `koanf:"database_url"`
	Log         logger.Config `koanf:"log"`
	Spotify     SpotifyConfig `koanf:"spotify"`
	Lastfm      LastfmConfig  `koanf:"lastfm"`
	Scan        ScanConfig    `koanf:"scan"`
}

// SpotifyConfig holds client-credentials for the Web API.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	BaseURL      string `koanf:"base_url"` // optional, for testing against a stub
}

// LastfmConfig enables round hints when set.
type LastfmConfig struct {
	APIKey string `koanf:"api_key"`
}

// ScanConfig tunes the scan pipeline.
type ScanConfig struct {
	ResetDelay  time.Duration `koanf:"reset_delay"`
	HistorySize int           `koanf:"history_size"`
}

// Environment variables that override file settings.
var envOverrides = map[string]string{
	"MUSIC_BLAST_ADDR": "addr",
	"DATABASE_URL":     "database_url",
	"SPOTIFY_ID":       "spotify.client_id",
	"SPOTIFY_SECRET":   "spotify.client_secret",
	"LASTFM_API_KEY":   "lastfm.api_key",
	"LOG_LEVEL":        "log.level",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		Log:  logger.DefaultConfig(),
		Scan: ScanConfig{
			ResetDelay:  scan.DefaultResetDelay,
			HistorySize: scan.DefaultHistorySize,
		},
	}
}

// Load reads ~/.config/music-blast/config.toml then ./config.toml (last
// wins), then applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom is Load with explicit file paths. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	for env, key := range envOverrides {
		if value := os.Getenv(env); value != "" {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("applying %s: %w", env, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	c.Lastfm.APIKey = strings.TrimSpace(c.Lastfm.APIKey)
	if c.Addr == "" {
		c.Addr = Default().Addr
	}
	if c.Scan.ResetDelay < 0 {
		c.Scan.ResetDelay = scan.DefaultResetDelay
	}
	if c.Scan.HistorySize <= 0 {
		c.Scan.HistorySize = scan.DefaultHistorySize
	}
}

// HasSpotify reports whether live Spotify metadata is configured.
func (c *Config) HasSpotify() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// HasDatabase reports whether PostgreSQL persistence is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasLastfm reports whether Last.fm hints are configured.
func (c *Config) HasLastfm() bool {
	return c.Lastfm.APIKey != ""
}

func getConfigPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}
	return append(paths, "config.toml")
}
