package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/music-blast/internal/auth"
	"github.com/justestif/music-blast/internal/game"
	"github.com/justestif/music-blast/internal/lastfm"
	"github.com/justestif/music-blast/internal/qr"
	"github.com/justestif/music-blast/internal/scan"
	"github.com/justestif/music-blast/internal/spotify"
	webfs "github.com/justestif/music-blast/web"
)

type fakeTracks struct {
	err error
}

func (f fakeTracks) TrackInfo(_ context.Context, id string) (*spotify.TrackInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &spotify.TrackInfo{ID: id, Name: "Live", Artist: "Band", ReleaseYear: 1999}, nil
}

func (f fakeTracks) SearchTracks(_ context.Context, query string, limit int) ([]spotify.TrackInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []spotify.TrackInfo{{ID: "s1", Name: query, ReleaseYear: 2000}}, nil
}

type fakeHints struct {
	err error
}

func (f fakeHints) Hints(_ context.Context, artist, track string, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"rock", strings.ToLower(artist)}, nil
}

func newTestServer(t *testing.T, mutate func(*ServerConfig)) *Server {
	t.Helper()

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	require.NoError(t, err)
	static, err := fs.Sub(webfs.StaticFS, "static")
	require.NoError(t, err)

	history := scan.NewMemoryHistory(10)
	cfg := ServerConfig{
		TemplatesFS: templates,
		StaticFS:    static,
		Scans:       scan.New(scan.WithRecorder(history)),
		History:     history,
		Games:       game.New(game.NewMemoryStore()),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServerRequiresServices(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	srv = newTestServer(t, func(cfg *ServerConfig) {
		cfg.Health = func(context.Context) error { return errors.New("db down") }
	})
	rec = do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScan(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus int
		wantKind   string
		wantName   string
		wantDeep   string
	}{
		{
			name:       "curated track url",
			payload:    "https://open.spotify.com/track/3n3Ppam7vgaVa1iaRUc9Lp?si=abc",
			wantStatus: http.StatusOK,
			wantKind:   "track",
			wantName:   "Mr. Brightside",
			wantDeep:   "spotify://track/3n3Ppam7vgaVa1iaRUc9Lp",
		},
		{
			name:       "fallback track uri",
			payload:    "spotify:track:abc123",
			wantStatus: http.StatusOK,
			wantKind:   "track",
			wantName:   "Stairway to Heaven",
			wantDeep:   "spotify://track/abc123",
		},
		{
			name:       "playlist",
			payload:    "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			wantStatus: http.StatusOK,
			wantKind:   "playlist",
			wantDeep:   "spotify://playlist/37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:       "web url",
			payload:    "https://example.com/page",
			wantStatus: http.StatusOK,
			wantKind:   "web_url",
		},
		{
			name:       "invalid",
			payload:    "hello world",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)
			rec := do(t, srv, http.MethodPost, "/api/scan", scanRequest{Payload: tt.payload}, deviceHeader, tt.name)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				resp := decode[errorResponse](t, rec)
				assert.Equal(t, "invalid QR code", resp.Error)
				return
			}

			resp := decode[scanResponse](t, rec)
			assert.Equal(t, tt.wantKind, resp.Intent.Kind)
			assert.Equal(t, tt.wantDeep, resp.Intent.DeepLink)
			if tt.wantName != "" {
				require.NotNil(t, resp.Identity)
				assert.Equal(t, tt.wantName, resp.Identity.Name)
			} else {
				assert.Nil(t, resp.Identity)
			}
		})
	}
}

func TestScanBusyAndHistory(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/scan", scanRequest{Payload: "spotify:track:abc"}, deviceHeader, "phone")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/scan", scanRequest{Payload: "spotify:track:def"}, deviceHeader, "phone")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/scan", scanRequest{Payload: "spotify:track:def"}, deviceHeader, "tablet")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/devices/phone/scans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]scanRecordResponse](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, "spotify:track:abc", records[0].Raw)
	assert.Equal(t, "abc", records[0].Intent.ID)
}

func TestScanBadBody(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeviceScansWithoutHistory(t *testing.T) {
	srv := newTestServer(t, func(cfg *ServerConfig) { cfg.History = nil })
	rec := do(t, srv, http.MethodGet, "/api/devices/phone/scans", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTrack(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/tracks/abc123", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[trackResponse](t, rec)
	assert.Equal(t, "Stairway to Heaven", resp.Identity.Name)
	assert.Equal(t, 1971, resp.Identity.ReleaseYear)
	assert.Equal(t, scan.SourceFallback, resp.Source)

	rec = do(t, srv, http.MethodGet, "/api/tracks/4iV5W9uYEdYUVa79Axb7Rh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[trackResponse](t, rec)
	assert.Equal(t, "Blinding Lights", resp.Identity.Name)
	assert.Equal(t, scan.SourceCatalog, resp.Source)
}

func TestSpotifyEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		tracks     TrackLookup
		target     string
		wantStatus int
	}{
		{"track not configured", nil, "/api/tracks/x/spotify", http.StatusServiceUnavailable},
		{"search not configured", nil, "/api/search?q=queen", http.StatusServiceUnavailable},
		{"track ok", fakeTracks{}, "/api/tracks/x/spotify", http.StatusOK},
		{"search ok", fakeTracks{}, "/api/search?q=queen&limit=3", http.StatusOK},
		{"search missing query", fakeTracks{}, "/api/search", http.StatusBadRequest},
		{"search bad limit", fakeTracks{}, "/api/search?q=a&limit=x", http.StatusBadRequest},
		{"metadata failure", fakeTracks{err: spotify.ErrMetadataFetchFailure}, "/api/tracks/x/spotify", http.StatusBadGateway},
		{"auth failure", fakeTracks{err: auth.ErrAuthenticationFailure}, "/api/search?q=a", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(cfg *ServerConfig) { cfg.Tracks = tt.tracks })
			rec := do(t, srv, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRoundFlow(t *testing.T) {
	srv := newTestServer(t, func(cfg *ServerConfig) { cfg.Hints = fakeHints{} })

	rec := do(t, srv, http.MethodPost, "/api/rounds", startRoundRequest{PlayerID: "p1", TrackID: "3n3Ppam7vgaVa1iaRUc9Lp"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	round := decode[roundResponse](t, rec)
	assert.Nil(t, round.Identity, "identity hidden before the guess")
	assert.Nil(t, round.AlbumArt, "cover art hidden before the guess")
	assert.NotEmpty(t, round.AudioURL)

	rec = do(t, srv, http.MethodGet, "/api/rounds/"+round.ID+"/hints", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hints := decode[hintsResponse](t, rec)
	assert.Equal(t, []string{"rock", "the killers"}, hints.Hints)

	rec = do(t, srv, http.MethodPost, "/api/rounds/"+round.ID+"/guess", guessRequest{Year: 2003})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	guessed := decode[roundResponse](t, rec)
	assert.Equal(t, 90, guessed.Points)
	require.NotNil(t, guessed.Identity)
	assert.Equal(t, "Mr. Brightside", guessed.Identity.Name)
	require.NotNil(t, guessed.AlbumArt)
	assert.Equal(t, *guessed.Identity.AlbumArt, *guessed.AlbumArt)

	rec = do(t, srv, http.MethodPost, "/api/rounds/"+round.ID+"/guess", guessRequest{Year: 2004})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/rounds/"+round.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, decode[roundResponse](t, rec).Points)

	rec = do(t, srv, http.MethodGet, "/api/players/p1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[summaryResponse](t, rec)
	assert.Equal(t, 1, sum.Rounds)
	assert.Equal(t, 90, sum.TotalPoints)
	assert.InDelta(t, 1.0, sum.AverageError, 0.001)
}

func TestRoundErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
	}{
		{"missing track", http.MethodPost, "/api/rounds", startRoundRequest{PlayerID: "p"}, http.StatusBadRequest},
		{"malformed round id", http.MethodGet, "/api/rounds/nope", nil, http.StatusNotFound},
		{"unknown round", http.MethodPost, "/api/rounds/6f1c1d56-6a35-4f0f-9d7e-2f6f9d9b1a11/guess", guessRequest{Year: 1990}, http.StatusNotFound},
		{"hints not configured", http.MethodGet, "/api/rounds/6f1c1d56-6a35-4f0f-9d7e-2f6f9d9b1a11/hints", nil, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, srv, http.MethodPost, "/api/rounds", startRoundRequest{PlayerID: "p", TrackID: "abc"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[roundResponse](t, rec).ID

	rec = do(t, srv, http.MethodPost, "/api/rounds/"+id+"/guess", guessRequest{Year: 12})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartRoundUsesPlayerCookie(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/rounds", startRoundRequest{TrackID: "abc"})
	require.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, playerCookieName, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, decode[roundResponse](t, rec).PlayerID)
}

func TestHintsUpstreamErrors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{lastfm.ErrRateLimited, http.StatusServiceUnavailable},
		{lastfm.ErrInvalidAPIKey, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			srv := newTestServer(t, func(cfg *ServerConfig) { cfg.Hints = fakeHints{err: tt.err} })
			rec := do(t, srv, http.MethodPost, "/api/rounds", startRoundRequest{PlayerID: "p", TrackID: "abc"})
			require.Equal(t, http.StatusCreated, rec.Code)
			id := decode[roundResponse](t, rec).ID

			rec = do(t, srv, http.MethodGet, "/api/rounds/"+id+"/hints", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPages(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Demo cards")
	assert.Contains(t, rec.Body.String(), "/play/3n3Ppam7vgaVa1iaRUc9Lp")
	assert.NotContains(t, rec.Body.String(), "Mr. Brightside", "titles stay hidden")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	player := cookies[0]

	req := httptest.NewRequest(http.MethodGet, "/play/abc123", nil)
	req.AddCookie(player)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "SoundHelix-Song-5.mp3")
	assert.NotContains(t, body, "Stairway to Heaven")
	assert.NotContains(t, body, "i.scdn.co", "cover art hidden before the guess")

	// Pull the round id out of the form action.
	const marker = `action="/play/rounds/`
	start := strings.Index(body, marker)
	require.GreaterOrEqual(t, start, 0)
	roundID := body[start+len(marker) : start+len(marker)+36]

	form := url.Values{"year": {"1971"}}
	req = httptest.NewRequest(http.MethodPost, "/play/rounds/"+roundID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(player)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stairway to Heaven")
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("%d points", game.ExactPoints))

	// Reloading a played card shows the stored result, not a fresh round.
	req = httptest.NewRequest(http.MethodGet, "/play/abc123", nil)
	req.AddCookie(player)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stairway to Heaven")
	assert.NotContains(t, rec.Body.String(), marker)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(player)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Your score")
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/static/style.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{qr.ErrClassificationInvalid, http.StatusUnprocessableEntity},
		{scan.ErrBusy, http.StatusTooManyRequests},
		{game.ErrInvalidGuess, http.StatusBadRequest},
		{fmt.Errorf("getting round: %w", game.ErrRoundNotFound), http.StatusNotFound},
		{game.ErrAlreadyGuessed, http.StatusConflict},
		{errNotConfigured, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: boom", spotify.ErrMetadataFetchFailure), http.StatusBadGateway},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
