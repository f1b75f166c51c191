package ledger

import (
	"math"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
)

// MasteredThreshold is the mastery level at which a card counts as mastered.
const MasteredThreshold = 80

// RefreshContentStats recomputes the content counters (sets, cards,
// mastery) from the sets. Study-time and review counters are preserved.
func RefreshContentStats(stats domain.FlashcardStats, sets []domain.FlashcardSet) domain.FlashcardStats {
	stats.TotalSets = len(sets)
	stats.TotalCards = 0
	stats.CardsMastered = 0

	masterySum := 0
	for _, set := range sets {
		stats.TotalCards += len(set.Cards)
		for _, card := range set.Cards {
			masterySum += card.MasteryLevel
			if card.MasteryLevel >= MasteredThreshold {
				stats.CardsMastered++
			}
		}
	}

	stats.AverageMastery = 0
	if stats.TotalCards > 0 {
		avg := float64(masterySum) / float64(stats.TotalCards)
		stats.AverageMastery = math.Round(avg*10) / 10
	}

	return stats
}

// RolloverStudyTime clears StudyTimeToday when the last study day is not
// today.
func RolloverStudyTime(stats domain.FlashcardStats, now time.Time) domain.FlashcardStats {
	if stats.LastStudyDate != DayKey(now) {
		stats.StudyTimeToday = 0
	}
	return stats
}

// RecordStudyTime adds a session's duration and review count to the content
// stats and marks today as the last study day.
func RecordStudyTime(stats domain.FlashcardStats, seconds, reviews int, now time.Time) domain.FlashcardStats {
	stats = RolloverStudyTime(stats, now)
	stats.StudyTimeToday += seconds
	stats.StudyTimeTotal += seconds
	stats.TotalReviews += reviews
	stats.LastStudyDate = DayKey(now)
	return stats
}
