// Package clustering groups a player's guessed rounds into release-year eras
// using k-means, showing which periods a player knows well.
package clustering

// Guess is one scored round as seen by the clustering step.
type Guess struct {
	TrackID     string
	Name        string
	Artist      string
	ReleaseYear int
	GuessYear   int
}

// YearsOff returns how many years the guess was off.
func (g Guess) YearsOff() int {
	d := g.GuessYear - g.ReleaseYear
	if d < 0 {
		return -d
	}
	return d
}
