package clustering

import (
	"fmt"
	"strings"
)

// Guesses listed per era before the rest are collapsed into "and N more".
const sampleGuessCount = 3

// FormatEraSummary renders eras as plain text: one header line, then a block
// per era with its year range, guess count, average error and a few sample
// guesses. Outliers only contribute to the counts.
func FormatEraSummary(eras []Era, outliers []Guess) string {
	total := len(outliers)
	for _, era := range eras {
		total += len(era.Guesses)
	}

	var b strings.Builder
	if len(eras) == 0 {
		fmt.Fprintf(&b, "No eras found from %d guesses", total)
	} else {
		fmt.Fprintf(&b, "Found %d %s from %d guesses", len(eras), plural(len(eras), "era", "eras"), total)
	}
	if len(outliers) > 0 {
		fmt.Fprintf(&b, " (%d outliers skipped)", len(outliers))
	}
	b.WriteByte('\n')

	for i, era := range eras {
		b.WriteByte('\n')
		writeEra(&b, i+1, era)
	}
	return b.String()
}

func writeEra(b *strings.Builder, num int, era Era) {
	n := len(era.Guesses)
	fmt.Fprintf(b, "Era %d: %s, %d %s, off by %.1f years on average\n",
		num, era.Name, n, plural(n, "guess", "guesses"), era.AverageError)

	for _, g := range era.Guesses[:min(sampleGuessCount, n)] {
		fmt.Fprintf(b, "  • %q - %s (%d, guessed %d)\n", g.Name, g.Artist, g.ReleaseYear, g.GuessYear)
	}
	if n > sampleGuessCount {
		fmt.Fprintf(b, "  ... and %d more\n", n-sampleGuessCount)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
