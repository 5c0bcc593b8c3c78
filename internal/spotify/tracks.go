package spotify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/music-blast/internal/catalog"
)

const (
	// maxTracksPerRequest is the Web API limit for GET /tracks.
	maxTracksPerRequest = 50

	defaultSearchLimit = 5
)

// TrackInfo fetches metadata for a single track.
func (c *Client) TrackInfo(ctx context.Context, trackID string) (*TrackInfo, error) {
	track, err := c.api.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, c.wrapError("fetching track "+trackID, err)
	}

	info := convertTrack(*track)
	return &info, nil
}

// TracksInfo fetches metadata for several tracks, batching requests to the
// API limit. Unknown ids are skipped; order follows the input.
func (c *Client) TracksInfo(ctx context.Context, trackIDs []string) ([]TrackInfo, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	infos := make([]TrackInfo, 0, len(ids))
	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		batch := ids[i:end]

		tracks, err := c.api.GetTracks(ctx, batch)
		if err != nil {
			return nil, c.wrapError(fmt.Sprintf("fetching tracks (batch %d-%d)", i+1, end), err)
		}

		for _, t := range tracks {
			if t == nil {
				continue // Unknown id
			}
			infos = append(infos, convertTrack(*t))
		}
	}

	return infos, nil
}

// SearchTracks searches the catalogue for tracks matching query.
// A non-positive limit uses the default of 5.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]TrackInfo, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, c.wrapError("searching tracks", err)
	}
	if result.Tracks == nil {
		return []TrackInfo{}, nil
	}

	infos := make([]TrackInfo, len(result.Tracks.Tracks))
	for i, t := range result.Tracks.Tracks {
		infos[i] = convertTrack(t)
	}
	return infos, nil
}

// convertTrack converts a Spotify FullTrack to TrackInfo.
func convertTrack(track spotify.FullTrack) TrackInfo {
	// Join artist names
	artists := make([]string, len(track.Artists))
	for i, a := range track.Artists {
		artists[i] = a.Name
	}

	var art *string
	if len(track.Album.Images) > 0 {
		url := track.Album.Images[0].URL
		art = &url
	}

	id := track.ID.String()

	return TrackInfo{
		ID:          id,
		Name:        track.Name,
		Artist:      strings.Join(artists, ", "),
		AlbumArt:    art,
		ReleaseYear: releaseYear(track.Album.ReleaseDate),
		AlbumName:   track.Album.Name,
		DurationMs:  int(track.Duration),
		SpotifyURL:  track.ExternalURLs["spotify"],
		AudioURL:    catalog.AudioURL(len(id)%catalog.AudioAssets + 1),
	}
}

// releaseYear extracts the year from a release date of "2006", "2006-01"
// or "2006-01-02" precision. Returns 0 when the date is unparseable.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
