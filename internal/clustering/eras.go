package clustering

import (
	"fmt"
	"math"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Config holds era clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum guesses per era (smaller clusters become outliers)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 2,
	}
}

// Era is a cluster of guesses with nearby release years.
type Era struct {
	Name         string  // "70s Classics (1971-1979)"
	Guesses      []Guess // Sorted by release year
	CenterYear   float64
	StartYear    int
	EndYear      int
	AverageError float64 // Mean years off across the era
}

// guessObservation wraps a Guess to implement clusters.Observation.
type guessObservation struct {
	guess  *Guess
	coords clusters.Coordinates
}

func (o guessObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o guessObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// DetectEras groups guesses by release year using k-means clustering.
// Returns eras sorted oldest first and the guesses that fit no era.
// Guesses without a release year are outliers.
func DetectEras(guesses []Guess, cfg Config) ([]Era, []Guess) {
	if len(guesses) == 0 {
		return nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	var valid []*Guess
	var outliers []Guess
	for i := range guesses {
		g := &guesses[i]
		if g.ReleaseYear > 0 {
			valid = append(valid, g)
		} else {
			outliers = append(outliers, *g)
		}
	}

	// Never ask for more clusters than distinct years
	k := min(cfg.NumClusters, distinctYears(valid))
	if k == 0 {
		return nil, outliers
	}

	var obs clusters.Observations
	for _, g := range valid {
		obs = append(obs, guessObservation{
			guess:  g,
			coords: clusters.Coordinates{float64(g.ReleaseYear)},
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, k)
	if err != nil {
		// On error, treat all as outliers
		for _, g := range valid {
			outliers = append(outliers, *g)
		}
		return nil, outliers
	}

	var eras []Era
	for _, cluster := range result {
		var members []Guess
		for _, o := range cluster.Observations {
			if gobs, ok := o.(guessObservation); ok {
				members = append(members, *gobs.guess)
			}
		}

		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinClusterSize {
			outliers = append(outliers, members...)
			continue
		}

		eras = append(eras, buildEra(members, cluster.Center[0]))
	}

	slices.SortFunc(eras, func(a, b Era) int {
		return a.StartYear - b.StartYear
	})

	return eras, outliers
}

func buildEra(members []Guess, center float64) Era {
	slices.SortFunc(members, func(a, b Guess) int {
		return a.ReleaseYear - b.ReleaseYear
	})

	total := 0
	for _, g := range members {
		total += g.YearsOff()
	}

	start := members[0].ReleaseYear
	end := members[len(members)-1].ReleaseYear

	return Era{
		Name:         formatEraName(center, start, end),
		Guesses:      members,
		CenterYear:   center,
		StartYear:    start,
		EndYear:      end,
		AverageError: float64(total) / float64(len(members)),
	}
}

func distinctYears(guesses []*Guess) int {
	seen := make(map[int]struct{}, len(guesses))
	for _, g := range guesses {
		seen[g.ReleaseYear] = struct{}{}
	}
	return len(seen)
}

// formatEraName names an era after the decade of its center.
func formatEraName(center float64, start, end int) string {
	decade := int(math.Round(center)) / 10 * 10
	name := decadeName(decade)

	if start == end {
		return fmt.Sprintf("%s (%d)", name, start)
	}
	return fmt.Sprintf("%s (%d-%d)", name, start, end)
}

func decadeName(decade int) string {
	switch {
	case decade < 1960:
		return "Golden Oldies"
	case decade < 2000:
		return fmt.Sprintf("%02ds Classics", decade%100)
	case decade < 2010:
		return "2000s Hits"
	default:
		return fmt.Sprintf("%ds Hits", decade)
	}
}
