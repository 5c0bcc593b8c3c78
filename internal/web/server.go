package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/justestif/music-blast/internal/game"
	"github.com/justestif/music-blast/internal/logger"
	"github.com/justestif/music-blast/internal/scan"
	"github.com/justestif/music-blast/internal/spotify"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = ":8080"

	shutdownTimeout = 10 * time.Second
)

// TrackLookup fetches live Spotify metadata.
type TrackLookup interface {
	TrackInfo(ctx context.Context, trackID string) (*spotify.TrackInfo, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.TrackInfo, error)
}

// HintSource returns genre hints for a track.
type HintSource interface {
	Hints(ctx context.Context, artist, track string, limit int) ([]string, error)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr        string
	TemplatesFS fs.FS
	StaticFS    fs.FS
	Logger      *zap.Logger

	Scans   *scan.Service
	History scan.History
	Games   *game.Service

	// Optional; the matching endpoints answer 503 when nil.
	Tracks TrackLookup
	Hints  HintSource

	// Health reports dependency status for /healthz. Optional.
	Health func(ctx context.Context) error
}

// Server is the HTTP server for the game.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   *zap.Logger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Scans == nil || cfg.Games == nil {
		return nil, errors.New("scan and game services are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	router := chi.NewRouter()
	s := &Server{
		router:   router,
		handlers: NewHandlers(cfg, templates),
		logger:   cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.Middleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes(staticFS fs.FS) {
	h := s.handlers

	if staticFS != nil {
		fileServer := http.FileServer(http.FS(staticFS))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	// Pages
	s.router.Get("/", h.Home)
	s.router.Get("/play/{trackID}", h.Play)
	s.router.Post("/play/rounds/{roundID}", h.PlayGuess)
	s.router.Get("/healthz", h.Healthz)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/scan", h.Scan)
		r.Get("/devices/{deviceID}/scans", h.DeviceScans)

		r.Get("/tracks/{trackID}", h.Track)
		r.Get("/tracks/{trackID}/spotify", h.SpotifyTrack)
		r.Get("/search", h.Search)

		r.Post("/rounds", h.StartRound)
		r.Get("/rounds/{roundID}", h.GetRound)
		r.Post("/rounds/{roundID}/guess", h.Guess)
		r.Get("/rounds/{roundID}/hints", h.RoundHints)

		r.Get("/players/{playerID}/summary", h.PlayerSummary)
	})
}

// ServeHTTP lets the server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("addr", ln.Addr().String()))
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
