// Package qr classifies scanned QR payloads into game intents.
package qr

import (
	"errors"
	"regexp"
	"strings"
)

// ErrClassificationInvalid is returned for payloads that match no known pattern.
var ErrClassificationInvalid = errors.New("invalid QR code")

// Kind identifies what a scanned payload refers to.
type Kind int

const (
	KindInvalid Kind = iota
	KindTrack
	KindPlaylist
	KindAlbum
	KindWebURL
)

// String returns the lowercase kind name used in JSON responses and logs.
func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindPlaylist:
		return "playlist"
	case KindAlbum:
		return "album"
	case KindWebURL:
		return "web_url"
	default:
		return "invalid"
	}
}

// Intent is the classified meaning of a scanned payload.
// ID is set for Spotify kinds, URL for KindWebURL.
type Intent struct {
	Kind Kind
	ID   string
	URL  string
}

var invalid = Intent{Kind: KindInvalid}

const (
	trackURIPrefix = "spotify:track:"
	spotifyWebBase = "https://open.spotify.com/"
)

// webURLPattern matches absolute http(s) URLs, case-insensitively.
var webURLPattern = regexp.MustCompile(`(?i)^https?://[^\s/$.?#].[^\s]*$`)

// Classify maps raw scanner text to an Intent. It never fails: anything
// unrecognised becomes KindInvalid.
func Classify(raw string) Intent {
	if raw == "" {
		return invalid
	}

	// Web track links (open.spotify.com is a superset match of spotify.com)
	if strings.Contains(raw, "spotify.com/track/") {
		id, ok := segmentAfter(raw, "/track/")
		if !ok {
			return invalid
		}
		return Intent{Kind: KindTrack, ID: id}
	}

	if strings.HasPrefix(raw, trackURIPrefix) {
		fields := strings.Split(raw, ":")
		if len(fields) < 3 || fields[2] == "" {
			return invalid
		}
		return Intent{Kind: KindTrack, ID: fields[2]}
	}

	if strings.Contains(raw, "spotify.com/playlist/") {
		id, ok := segmentAfter(raw, "/playlist/")
		if !ok {
			return invalid
		}
		return Intent{Kind: KindPlaylist, ID: id}
	}

	if strings.Contains(raw, "spotify.com/album/") {
		id, ok := segmentAfter(raw, "/album/")
		if !ok {
			return invalid
		}
		return Intent{Kind: KindAlbum, ID: id}
	}

	if webURLPattern.MatchString(raw) {
		return Intent{Kind: KindWebURL, URL: raw}
	}

	return invalid
}

// TrackID extracts a track id from raw, accepting only track payloads.
func TrackID(raw string) (string, bool) {
	intent := Classify(raw)
	if intent.Kind != KindTrack {
		return "", false
	}
	return intent.ID, true
}

// segmentAfter returns the path segment following marker, cut at the first
// query, fragment or path separator.
func segmentAfter(raw, marker string) (string, bool) {
	_, rest, found := strings.Cut(raw, marker)
	if !found {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#/"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// Valid reports whether the intent is anything other than KindInvalid.
func (i Intent) Valid() bool {
	return i.Kind != KindInvalid
}

// Err returns ErrClassificationInvalid for invalid intents, nil otherwise.
func (i Intent) Err() error {
	if i.Kind == KindInvalid {
		return ErrClassificationInvalid
	}
	return nil
}

// String returns the kind name.
func (i Intent) String() string {
	return i.Kind.String()
}

// DeepLink returns the native app link (spotify://track/<id>) for Spotify
// intents and an empty string otherwise.
func (i Intent) DeepLink() string {
	switch i.Kind {
	case KindTrack, KindPlaylist, KindAlbum:
		return "spotify://" + i.Kind.String() + "/" + i.ID
	default:
		return ""
	}
}

// WebLink returns the browser fallback for the intent.
func (i Intent) WebLink() string {
	switch i.Kind {
	case KindTrack, KindPlaylist, KindAlbum:
		return spotifyWebBase + i.Kind.String() + "/" + i.ID
	case KindWebURL:
		return i.URL
	default:
		return ""
	}
}
