package ledger

import "math"

// Session XP terms
const (
	XPPerCorrectCard   = 10
	MaxAccuracyBonus   = 50
	StreakBonusPercent = 0.2
	PerfectBonus       = 100
)

// IsPerfect reports whether a session had at least one card and no misses.
func IsPerfect(cardsStudied, cardsIncorrect int) bool {
	return cardsIncorrect == 0 && cardsStudied > 0
}

// CalculateSessionXP returns the XP earned by a completed session:
// 10 per correct card, up to 50 for accuracy, 20% of the base while a streak
// is active, and 100 for a perfect session.
func CalculateSessionXP(cardsCorrect, cardsStudied int, streakActive, isPerfect bool) int {
	if cardsCorrect < 0 {
		cardsCorrect = 0
	}

	base := cardsCorrect * XPPerCorrectCard

	accuracyBonus := 0
	if cardsStudied > 0 {
		accuracyBonus = int(math.Floor(float64(cardsCorrect) / float64(cardsStudied) * MaxAccuracyBonus))
	}

	streakBonus := 0
	if streakActive {
		streakBonus = int(math.Floor(float64(base) * StreakBonusPercent))
	}

	perfectBonus := 0
	if isPerfect {
		perfectBonus = PerfectBonus
	}

	return base + accuracyBonus + streakBonus + perfectBonus
}
