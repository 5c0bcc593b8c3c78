package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/music-blast/internal/catalog"
	"github.com/justestif/music-blast/internal/game"
	"github.com/justestif/music-blast/internal/scan"
)

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	scans     *scan.Service
	history   scan.History
	games     *game.Service
	tracks    TrackLookup
	hints     HintSource
	health    func(ctx context.Context) error
	templates *Templates
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg ServerConfig, templates *Templates) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		scans:     cfg.Scans,
		history:   cfg.History,
		games:     cfg.Games,
		tracks:    cfg.Tracks,
		hints:     cfg.Hints,
		health:    cfg.Health,
		templates: templates,
		logger:    logger,
	}
}

// Home handles the home page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	player := ensurePlayer(w, r)

	data := HomePageData{
		PageData: PageData{
			Title:       "Music Blast",
			PlayerID:    player,
			CurrentPath: r.URL.Path,
		},
	}

	for i, id := range catalog.DemoIDs() {
		data.DemoTracks = append(data.DemoTracks, DemoTrack{ID: id, Number: i + 1})
	}

	sum, err := h.games.Summary(r.Context(), player)
	if err != nil {
		h.logger.Warn("loading summary", zap.String("player_id", player), zap.Error(err))
	} else if sum.Rounds > 0 {
		data.Summary = toSummaryData(sum)
	}

	h.render(w, "home", data)
}

// Play starts a round for the track and renders the guess form
// (GET /play/{trackID}). The title stays hidden until the guess.
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	player := ensurePlayer(w, r)
	trackID := chi.URLParam(r, "trackID")

	round, err := h.games.Start(r.Context(), player, trackID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, "play", playPageData(round, r.URL.Path))
}

// PlayGuess scores the form guess and reveals the track
// (POST /play/rounds/{roundID}).
func (h *Handlers) PlayGuess(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "roundID"))
	if err != nil {
		h.renderError(w, r, game.ErrRoundNotFound)
		return
	}

	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		h.renderError(w, r, game.ErrInvalidGuess)
		return
	}

	round, err := h.games.Guess(r.Context(), id, year)
	if errors.Is(err, game.ErrAlreadyGuessed) {
		// Show the stored result instead of failing on a resubmitted form.
		round, err = h.games.Round(r.Context(), id)
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, "play", playPageData(round, r.URL.Path))
}

// Healthz reports liveness (GET /healthz).
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		h.logger.Error("rendering template", zap.String("page", page), zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	http.Error(w, publicMessage(err, status), status)
}

func playPageData(round *game.Round, path string) PlayPageData {
	return PlayPageData{
		PageData: PageData{
			Title:       "Guess the year",
			PlayerID:    round.PlayerID,
			CurrentPath: path,
		},
		RoundID:  round.ID.String(),
		TrackID:  round.TrackID,
		Identity: round.Identity,
		Guess:    round.Guess,
		Points:   round.Points,
		Revealed: round.Guessed(),
	}
}

func toSummaryData(sum *game.Summary) *SummaryData {
	data := &SummaryData{
		Rounds:      sum.Rounds,
		Guessed:     sum.Guessed,
		TotalPoints: sum.TotalPoints,
	}
	for _, era := range sum.Eras {
		data.Eras = append(data.Eras, EraData{
			Name:         era.Name,
			Count:        len(era.Guesses),
			AverageError: era.AverageError,
		})
	}
	return data
}
