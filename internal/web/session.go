// Package web provides the HTTP server and web UI for Music Blast.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	playerCookieName = "mb_player"
	playerCookieTTL  = 365 * 24 * time.Hour

	deviceHeader = "X-Device-ID"
)

// playerFromRequest returns the player id stored in the cookie, if any.
func playerFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(playerCookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// ensurePlayer returns the request's player id, issuing a new cookie when
// the browser has none.
func ensurePlayer(w http.ResponseWriter, r *http.Request) string {
	if id, ok := playerFromRequest(r); ok {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(playerCookieTTL.Seconds()),
	})
	return id
}

// deviceID identifies the scanner for the scan latch: an explicit header,
// then the player cookie, then the client address.
func deviceID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(deviceHeader)); id != "" {
		return id
	}
	if id, ok := playerFromRequest(r); ok {
		return id
	}
	return r.RemoteAddr
}
