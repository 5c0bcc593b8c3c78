package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Intent
	}{
		{
			name: "open.spotify.com track with query",
			raw:  "https://open.spotify.com/track/abc123?si=xyz",
			want: Intent{Kind: KindTrack, ID: "abc123"},
		},
		{
			name: "bare spotify.com track",
			raw:  "https://spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh",
			want: Intent{Kind: KindTrack, ID: "4iV5W9uYEdYUVa79Axb7Rh"},
		},
		{
			name: "track link with fragment",
			raw:  "https://open.spotify.com/track/3n3Ppam7vgaVa1iaRUc9Lp#play",
			want: Intent{Kind: KindTrack, ID: "3n3Ppam7vgaVa1iaRUc9Lp"},
		},
		{
			name: "track link with trailing slash",
			raw:  "https://open.spotify.com/track/abc123/",
			want: Intent{Kind: KindTrack, ID: "abc123"},
		},
		{
			name: "track link missing id",
			raw:  "https://open.spotify.com/track/",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "track link with only query",
			raw:  "https://open.spotify.com/track/?si=xyz",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "track URI",
			raw:  "spotify:track:abc123",
			want: Intent{Kind: KindTrack, ID: "abc123"},
		},
		{
			name: "track URI without id",
			raw:  "spotify:track:",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "playlist link",
			raw:  "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=1",
			want: Intent{Kind: KindPlaylist, ID: "37i9dQZF1DXcBWIGoYBM5M"},
		},
		{
			name: "album link",
			raw:  "https://open.spotify.com/album/1DFixLWuPkv3KT3TnV35m3",
			want: Intent{Kind: KindAlbum, ID: "1DFixLWuPkv3KT3TnV35m3"},
		},
		{
			name: "album link missing id",
			raw:  "https://open.spotify.com/album/",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "generic web url",
			raw:  "https://example.com/page",
			want: Intent{Kind: KindWebURL, URL: "https://example.com/page"},
		},
		{
			name: "uppercase scheme",
			raw:  "HTTP://example.com",
			want: Intent{Kind: KindWebURL, URL: "HTTP://example.com"},
		},
		{
			name: "spotify artist link is a plain url",
			raw:  "https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF",
			want: Intent{Kind: KindWebURL, URL: "https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF"},
		},
		{
			name: "empty",
			raw:  "",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "plain text",
			raw:  "hello world",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "url with whitespace",
			raw:  "https://example.com/a b",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "ftp url",
			raw:  "ftp://example.com/file",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "scheme only",
			raw:  "https://",
			want: Intent{Kind: KindInvalid},
		},
		{
			name: "track marker wins over playlist marker",
			raw:  "https://open.spotify.com/track/t1?context=spotify.com/playlist/p1",
			want: Intent{Kind: KindTrack, ID: "t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	inputs := []string{
		"spotify:track:abc",
		"https://open.spotify.com/album/x",
		"https://example.com",
		"nonsense",
	}
	for _, in := range inputs {
		assert.Equal(t, Classify(in), Classify(in), in)
	}
}

func TestTrackID(t *testing.T) {
	id, ok := TrackID("spotify:track:6rqhFgbbKwnb9MLmU2h6Uj")
	assert.True(t, ok)
	assert.Equal(t, "6rqhFgbbKwnb9MLmU2h6Uj", id)

	_, ok = TrackID("https://open.spotify.com/playlist/abc")
	assert.False(t, ok)

	_, ok = TrackID("https://example.com")
	assert.False(t, ok)
}

func TestIntentLinks(t *testing.T) {
	tests := []struct {
		intent   Intent
		deepLink string
		webLink  string
	}{
		{Intent{Kind: KindTrack, ID: "a"}, "spotify://track/a", "https://open.spotify.com/track/a"},
		{Intent{Kind: KindPlaylist, ID: "b"}, "spotify://playlist/b", "https://open.spotify.com/playlist/b"},
		{Intent{Kind: KindAlbum, ID: "c"}, "spotify://album/c", "https://open.spotify.com/album/c"},
		{Intent{Kind: KindWebURL, URL: "https://x.io"}, "", "https://x.io"},
		{Intent{Kind: KindInvalid}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.intent.String(), func(t *testing.T) {
			assert.Equal(t, tt.deepLink, tt.intent.DeepLink())
			assert.Equal(t, tt.webLink, tt.intent.WebLink())
		})
	}
}

func TestIntentErr(t *testing.T) {
	assert.ErrorIs(t, Classify("???").Err(), ErrClassificationInvalid)
	assert.NoError(t, Classify("spotify:track:a").Err())
	assert.False(t, Classify("").Valid())
	assert.True(t, Classify("https://example.com").Valid())
}
