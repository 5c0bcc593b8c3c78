// Command music-blast runs the Music Blast game server.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/justestif/music-blast/internal/auth"
	"github.com/justestif/music-blast/internal/config"
	"github.com/justestif/music-blast/internal/db"
	"github.com/justestif/music-blast/internal/game"
	"github.com/justestif/music-blast/internal/lastfm"
	"github.com/justestif/music-blast/internal/scan"
	"github.com/justestif/music-blast/internal/spotify"
	"github.com/justestif/music-blast/internal/web"
	webfs "github.com/justestif/music-blast/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverCfg := web.ServerConfig{
		Addr:   cfg.Addr,
		Logger: logger,
	}

	// Persistence: PostgreSQL when configured, memory otherwise
	var (
		history scan.History
		rounds  game.Store
	)
	if cfg.HasDatabase() {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		history = database.Scans()
		rounds = database.Rounds()
		serverCfg.Health = database.Ping
		logger.Info("using PostgreSQL storage")
	} else {
		history = scan.NewMemoryHistory(cfg.Scan.HistorySize)
		rounds = game.NewMemoryStore()
		logger.Info("no database_url set, using in-memory storage")
	}

	scanOpts := []scan.Option{
		scan.WithRecorder(history),
		scan.WithResetDelay(cfg.Scan.ResetDelay),
		scan.WithLogger(logger.Named("scan")),
	}

	if cfg.HasSpotify() {
		client, err := newSpotifyClient(cfg, logger)
		if err != nil {
			return err
		}
		scanOpts = append(scanOpts, scan.WithMetadata(client))
		serverCfg.Tracks = client
		logger.Info("spotify metadata enabled")
	} else {
		logger.Info("spotify credentials not set, running catalogue-only")
	}

	if cfg.HasLastfm() {
		lastfmCfg, err := lastfm.NewConfig(cfg.Lastfm.APIKey)
		if err != nil {
			return err
		}
		serverCfg.Hints = lastfm.NewClient(lastfmCfg, lastfm.WithLogger(logger.Named("lastfm")))
	}

	scans := scan.New(scanOpts...)
	serverCfg.Scans = scans
	serverCfg.History = history
	serverCfg.Games = game.New(rounds,
		game.WithIdentifier(scans),
		game.WithLogger(logger.Named("game")),
	)

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}
	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}
	serverCfg.TemplatesFS = templates
	serverCfg.StaticFS = static

	server, err := web.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

func newSpotifyClient(cfg *config.Config, logger *zap.Logger) (*spotify.Client, error) {
	creds, err := auth.NewClientCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("configuring spotify credentials: %w", err)
	}

	tokens := auth.NewTokenCache(creds, auth.WithLogger(logger.Named("auth")))

	opts := []spotify.Option{spotify.WithLogger(logger.Named("spotify"))}
	if cfg.Spotify.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(cfg.Spotify.BaseURL))
	}
	return spotify.New(tokens, opts...), nil
}
