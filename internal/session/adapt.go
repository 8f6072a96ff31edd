package session

import "github.com/lmeritt/sketchtrace/internal/score"

// Streak boundaries for the default difficulty adapter.
const (
	streakRaiseAbove = 0.9
	streakLowerBelow = 0.4
)

// StreakAdapter returns a DifficultyAdapter that raises the threshold by
// delta after window consecutive accuracies above 0.9 and lowers it by delta
// after window consecutive accuracies below 0.4. The tracker clamps the
// result to its configured bounds.
func StreakAdapter(window int, delta float64) DifficultyAdapter {
	if window < 1 {
		window = 1
	}
	var hot, cold int
	return func(fb score.Feedback, threshold float64) float64 {
		if fb.Accuracy > streakRaiseAbove {
			hot++
		} else {
			hot = 0
		}
		if fb.Accuracy < streakLowerBelow {
			cold++
		} else {
			cold = 0
		}
		if hot >= window {
			hot = 0
			return threshold + delta
		}
		if cold >= window {
			cold = 0
			return threshold - delta
		}
		return threshold
	}
}
