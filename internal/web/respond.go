package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/justestif/music-blast/internal/auth"
	"github.com/justestif/music-blast/internal/game"
	"github.com/justestif/music-blast/internal/lastfm"
	"github.com/justestif/music-blast/internal/qr"
	"github.com/justestif/music-blast/internal/scan"
	"github.com/justestif/music-blast/internal/spotify"
)

var (
	errNotConfigured = errors.New("feature not configured")
	errBadRequest    = errors.New("bad request")
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, qr.ErrClassificationInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scan.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, errBadRequest),
		errors.Is(err, game.ErrInvalidRound),
		errors.Is(err, game.ErrInvalidGuess):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrAlreadyGuessed):
		return http.StatusConflict
	case errors.Is(err, errNotConfigured),
		errors.Is(err, lastfm.ErrRateLimited):
		return http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrAuthenticationFailure),
		errors.Is(err, spotify.ErrMetadataFetchFailure),
		errors.Is(err, lastfm.ErrInvalidAPIKey):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text shown to clients.
func publicMessage(err error, status int) string {
	switch {
	case errors.Is(err, qr.ErrClassificationInvalid):
		return "invalid QR code"
	case status == http.StatusInternalServerError:
		return "internal error"
	case status == http.StatusBadGateway:
		return "upstream service unavailable"
	default:
		return err.Error()
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encoding response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	h.writeJSON(w, status, errorResponse{Error: publicMessage(err, status)})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16)).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", errBadRequest, err)
	}
	return nil
}
