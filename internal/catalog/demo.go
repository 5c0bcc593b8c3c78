package catalog

import "slices"

// demoTracks is the curated catalogue printed on the sample game cards.
var demoTracks = map[string]TrackIdentity{
	"3n3Ppam7vgaVa1iaRUc9Lp": demo("Mr. Brightside", "The Killers", 2004, "ab67616d0000b273c8a11e48c91e8b3b8c2b1b1a", 1),
	"4iV5W9uYEdYUVa79Axb7Rh": demo("Blinding Lights", "The Weeknd", 2020, "ab67616d0000b2738863bc11d2aa12b54f5aeb36", 2),
	"6rqhFgbbKwnb9MLmU2h6Uj": demo("Shape of You", "Ed Sheeran", 2017, "ab67616d0000b273ba5db46f4b838ef6027e6f96", 3),
	"3CRDbSIZ4r5MsZ0YwxuEkn": demo("Uptown Funk", "Mark Ronson ft. Bruno Mars", 2014, "ab67616d0000b273c8a11e48c91e8b3b8c2b1b1a", 4),
	"7lEptt4wbM0yJTvSG5EBof": demo("Despacito", "Luis Fonsi ft. Daddy Yankee", 2017, "ab67616d0000b273d8601e15fa1b4351fe1fc6ae", 5),
	"0V3wPSX9ygBnCm8psDIegu": demo("See You Again", "Wiz Khalifa ft. Charlie Puth", 2015, "ab67616d0000b273c8a11e48c91e8b3b8c2b1b1a", 6),
	"1z6WtY7Y4s9QWNiP45DHoT": demo("Closer", "The Chainsmokers ft. Halsey", 2016, "ab67616d0000b273ba5db46f4b838ef6027e6f96", 7),
	"2LBqCSwhJGcFQeTHMVGwy3": demo("Dance Monkey", "Tones and I", 2019, "ab67616d0000b2738863bc11d2aa12b54f5aeb36", 8),
	"4cOdK2wGLETKBW3PvgPWqT": demo("Someone You Loved", "Lewis Capaldi", 2019, "ab67616d0000b273d8601e15fa1b4351fe1fc6ae", 9),
}

func demo(name, artist string, year int, image string, audio int) TrackIdentity {
	art := "https://i.scdn.co/image/" + image
	return TrackIdentity{
		Name:        name,
		Artist:      artist,
		AlbumArt:    &art,
		ReleaseYear: year,
		AudioURL:    AudioURL(audio),
	}
}

// lookup returns a copy of the curated entry so callers cannot alias the
// table's album art pointer.
func lookup(trackID string) (TrackIdentity, bool) {
	identity, ok := demoTracks[trackID]
	if !ok {
		return TrackIdentity{}, false
	}
	if identity.AlbumArt != nil {
		art := *identity.AlbumArt
		identity.AlbumArt = &art
	}
	return identity, true
}

// DemoIDs returns the identifiers of the curated catalogue, sorted.
func DemoIDs() []string {
	ids := make([]string, 0, len(demoTracks))
	for id := range demoTracks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
