package game

const (
	maxPoints     = 100
	pointsPerYear = 10
	exactBonus    = 50
)

// ExactPoints is the score for guessing the release year exactly.
const ExactPoints = maxPoints + exactBonus

// Score returns the points for guessing year when the track was released
// in actual. An exact guess earns the bonus; every year off costs points
// down to zero.
func Score(guess, actual int) int {
	off := yearsOff(guess, actual)
	if off == 0 {
		return ExactPoints
	}
	return max(0, maxPoints-pointsPerYear*off)
}

func yearsOff(guess, actual int) int {
	if guess > actual {
		return guess - actual
	}
	return actual - guess
}
