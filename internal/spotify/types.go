package spotify

import "github.com/justestif/music-blast/internal/catalog"

// TrackInfo contains track metadata as shown on the play screen.
type TrackInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"` // Comma-separated artist names
	AlbumArt    *string `json:"album_art,omitempty"`
	ReleaseYear int     `json:"release_year"`
	AlbumName   string  `json:"album_name"`
	DurationMs  int     `json:"duration_ms"`
	SpotifyURL  string  `json:"spotify_url"`
	AudioURL    string  `json:"audio_url"` // Demo audio; licensed playback is not available
}

// Identity converts the metadata to the resolver's identity type.
func (t TrackInfo) Identity() catalog.TrackIdentity {
	return catalog.TrackIdentity{
		Name:        t.Name,
		Artist:      t.Artist,
		AlbumArt:    t.AlbumArt,
		ReleaseYear: t.ReleaseYear,
		AudioURL:    t.AudioURL,
	}
}
