package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justestif/music-blast/internal/catalog"
	"github.com/justestif/music-blast/internal/game"
	"github.com/justestif/music-blast/internal/qr"
	"github.com/justestif/music-blast/internal/scan"
	"github.com/justestif/music-blast/internal/spotify"
)

const (
	maxSearchLimit  = 50
	defaultHintsMax = 5
)

type scanRequest struct {
	Payload string `json:"payload"`
}

type intentResponse struct {
	Kind     string `json:"kind"`
	ID       string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	DeepLink string `json:"deep_link,omitempty"`
	WebLink  string `json:"web_link,omitempty"`
}

type scanResponse struct {
	Intent   intentResponse         `json:"intent"`
	Identity *catalog.TrackIdentity `json:"identity,omitempty"`
	Source   scan.Source            `json:"source,omitempty"`
}

type trackResponse struct {
	TrackID  string                `json:"track_id"`
	Identity catalog.TrackIdentity `json:"identity"`
	Source   scan.Source           `json:"source"`
}

type scanRecordResponse struct {
	Raw       string         `json:"raw"`
	Intent    intentResponse `json:"intent"`
	ScannedAt time.Time      `json:"scanned_at"`
}

type startRoundRequest struct {
	PlayerID string `json:"player_id"`
	TrackID  string `json:"track_id"`
}

type guessRequest struct {
	Year int `json:"year"`
}

type roundResponse struct {
	ID        string                 `json:"id"`
	PlayerID  string                 `json:"player_id"`
	TrackID   string                 `json:"track_id"`
	AudioURL  string                 `json:"audio_url"`
	AlbumArt  *string                `json:"album_art,omitempty"`
	Source    scan.Source            `json:"source"`
	Guess     *int                   `json:"guess,omitempty"`
	Points    int                    `json:"points"`
	Identity  *catalog.TrackIdentity `json:"identity,omitempty"` // Revealed after the guess
	CreatedAt time.Time              `json:"created_at"`
	GuessedAt *time.Time             `json:"guessed_at,omitempty"`
}

type eraResponse struct {
	Name         string  `json:"name"`
	StartYear    int     `json:"start_year"`
	EndYear      int     `json:"end_year"`
	Guesses      int     `json:"guesses"`
	AverageError float64 `json:"average_error"`
}

type summaryResponse struct {
	PlayerID     string        `json:"player_id"`
	Rounds       int           `json:"rounds"`
	Guessed      int           `json:"guessed"`
	TotalPoints  int           `json:"total_points"`
	ExactGuesses int           `json:"exact_guesses"`
	AverageError float64       `json:"average_error"`
	Eras         []eraResponse `json:"eras"`
	Outliers     int           `json:"outliers"`
	Text         string        `json:"text"`
}

type hintsResponse struct {
	RoundID string   `json:"round_id"`
	Hints   []string `json:"hints"`
}

// Scan classifies a scanned payload (POST /api/scan).
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.scans.Handle(r.Context(), deviceID(r), req.Payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, scanResponse{
		Intent:   toIntentResponse(result.Intent),
		Identity: result.Identity,
		Source:   result.Source,
	})
}

// DeviceScans lists recent scans for a device (GET /api/devices/{deviceID}/scans).
func (h *Handlers) DeviceScans(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, r, fmt.Errorf("%w: scan history", errNotConfigured))
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	records, err := h.history.Recent(r.Context(), chi.URLParam(r, "deviceID"), limit)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("loading scan history: %w", err))
		return
	}

	resp := make([]scanRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, scanRecordResponse{
			Raw:       rec.Raw,
			Intent:    toIntentResponse(rec.Intent),
			ScannedAt: rec.ScannedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Track resolves a track id (GET /api/tracks/{trackID}). Never fails.
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")
	identity, source := h.scans.Identify(r.Context(), trackID)

	h.writeJSON(w, http.StatusOK, trackResponse{
		TrackID:  trackID,
		Identity: identity,
		Source:   source,
	})
}

// SpotifyTrack returns live metadata (GET /api/tracks/{trackID}/spotify).
func (h *Handlers) SpotifyTrack(w http.ResponseWriter, r *http.Request) {
	if h.tracks == nil {
		h.writeError(w, r, fmt.Errorf("%w: spotify", errNotConfigured))
		return
	}

	info, err := h.tracks.TrackInfo(r.Context(), chi.URLParam(r, "trackID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

// Search runs a live track search (GET /api/search?q=&limit=).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	if h.tracks == nil {
		h.writeError(w, r, fmt.Errorf("%w: spotify", errNotConfigured))
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, r, fmt.Errorf("%w: missing q", errBadRequest))
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tracks, err := h.tracks.SearchTracks(r.Context(), query, min(limit, maxSearchLimit))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tracks == nil {
		tracks = []spotify.TrackInfo{}
	}
	h.writeJSON(w, http.StatusOK, tracks)
}

// StartRound opens a round (POST /api/rounds). The player id defaults to
// the cookie player.
func (h *Handlers) StartRound(w http.ResponseWriter, r *http.Request) {
	var req startRoundRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = ensurePlayer(w, r)
	}

	round, err := h.games.Start(r.Context(), req.PlayerID, req.TrackID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toRoundResponse(round))
}

// GetRound returns a round (GET /api/rounds/{roundID}).
func (h *Handlers) GetRound(w http.ResponseWriter, r *http.Request) {
	id, err := roundIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	round, err := h.games.Round(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRoundResponse(round))
}

// Guess scores a guess (POST /api/rounds/{roundID}/guess).
func (h *Handlers) Guess(w http.ResponseWriter, r *http.Request) {
	id, err := roundIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req guessRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	round, err := h.games.Guess(r.Context(), id, req.Year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRoundResponse(round))
}

// RoundHints returns genre hints for a round (GET /api/rounds/{roundID}/hints).
func (h *Handlers) RoundHints(w http.ResponseWriter, r *http.Request) {
	if h.hints == nil {
		h.writeError(w, r, fmt.Errorf("%w: last.fm", errNotConfigured))
		return
	}

	id, err := roundIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	round, err := h.games.Round(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	hints, err := h.hints.Hints(r.Context(), round.Identity.Artist, round.Identity.Name, defaultHintsMax)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hintsResponse{RoundID: id.String(), Hints: hints})
}

// PlayerSummary returns totals and eras (GET /api/players/{playerID}/summary).
func (h *Handlers) PlayerSummary(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	sum, err := h.games.Summary(r.Context(), playerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := summaryResponse{
		PlayerID:     sum.PlayerID,
		Rounds:       sum.Rounds,
		Guessed:      sum.Guessed,
		TotalPoints:  sum.TotalPoints,
		ExactGuesses: sum.ExactGuesses,
		AverageError: sum.AverageError,
		Eras:         make([]eraResponse, 0, len(sum.Eras)),
		Outliers:     sum.Outliers,
		Text:         sum.Text,
	}
	for _, era := range sum.Eras {
		resp.Eras = append(resp.Eras, eraResponse{
			Name:         era.Name,
			StartYear:    era.StartYear,
			EndYear:      era.EndYear,
			Guesses:      len(era.Guesses),
			AverageError: era.AverageError,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func toRoundResponse(round *game.Round) roundResponse {
	resp := roundResponse{
		ID:        round.ID.String(),
		PlayerID:  round.PlayerID,
		TrackID:   round.TrackID,
		AudioURL:  round.Identity.AudioURL,
		Source:    round.Source,
		Guess:     round.Guess,
		Points:    round.Points,
		CreatedAt: round.CreatedAt,
		GuessedAt: round.GuessedAt,
	}
	// Cover art names the record, so it is withheld with the identity.
	if round.Guessed() {
		identity := round.Identity
		resp.Identity = &identity
		resp.AlbumArt = identity.AlbumArt
	}
	return resp
}

func roundIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "roundID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed round id", game.ErrRoundNotFound)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, key)
	}
	return n, nil
}

func toIntentResponse(intent qr.Intent) intentResponse {
	return intentResponse{
		Kind:     intent.Kind.String(),
		ID:       intent.ID,
		URL:      intent.URL,
		DeepLink: intent.DeepLink(),
		WebLink:  intent.WebLink(),
	}
}
