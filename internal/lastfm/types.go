package lastfm

// Tag is a Last.fm tag with its popularity count.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"` // Absent in artist.getTopTags
	URL   string `json:"url"`
}

// topTagsResponse covers both track.getTopTags and artist.getTopTags.
type topTagsResponse struct {
	TopTags struct {
		Tag []Tag `json:"tag"`
	} `json:"toptags"`
}

type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
