package srs

import (
	"math"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease update for a quality grade.
//
// The update runs on every review, correct or not, so a failed recall still
// lowers the ease. The result never drops below params.MinEaseFactor.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	d := float64(MaxQuality - quality)
	newEF := currentEF + params.EaseBonus - d*(params.EaseLinear+d*params.EaseQuadratic)

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next interval in days and the new
// repetition count.
//
// Algorithm behavior:
//   - Failed recall (quality below params.PassingQuality): repetitions reset
//     to 0 and the interval to params.FirstInterval
//   - First correct recall: params.FirstInterval
//   - Second consecutive correct recall: params.SecondInterval
//   - Afterwards: round(interval * easeFactor), using the ease factor the card
//     had before this review
func calculateNewInterval(
	currentInterval int,
	repetitions int,
	easeFactor float64,
	quality int,
	params *Params,
) (interval int, newRepetitions int) {
	if quality < params.PassingQuality {
		return params.FirstInterval, 0
	}

	switch repetitions {
	case 0:
		interval = params.FirstInterval
	case 1:
		interval = params.SecondInterval
	default:
		interval = int(math.Round(float64(currentInterval) * easeFactor))
	}

	if interval < domain.MinInterval {
		interval = domain.MinInterval
	}

	return interval, repetitions + 1
}

// calculateMastery derives the advisory 0-100 mastery score from review
// accuracy weighted by log10 of the review count.
func calculateMastery(timesCorrect, timesReviewed int) int {
	if timesReviewed <= 0 {
		return 0
	}

	accuracy := float64(timesCorrect) / float64(timesReviewed)
	mastery := int(math.Floor(accuracy * 100 * math.Log10(float64(timesReviewed+1))))

	return clamp(mastery, 0, domain.MaxMasteryLevel)
}

// recordAttempt applies the bookkeeping shared by every strategy: review
// counters and the last-reviewed timestamp.
func recordAttempt(card domain.Flashcard, correct bool, now time.Time) domain.Flashcard {
	card.TimesReviewed++
	if correct {
		card.TimesCorrect++
	}
	reviewedAt := now
	card.LastReviewedAt = &reviewedAt
	return card
}

// calculateNextSM2 returns a copy of card rescheduled by SM-2.
func calculateNextSM2(card domain.Flashcard, quality int, now time.Time, params *Params) domain.Flashcard {
	next := recordAttempt(card, quality >= params.PassingQuality, now)

	// Cards loaded from older data may carry a zero ease factor
	ef := card.EaseFactor
	if ef < params.MinEaseFactor {
		ef = params.InitialEaseFactor
	}

	next.Interval, next.Repetitions = calculateNewInterval(card.Interval, card.Repetitions, ef, quality, params)
	next.EaseFactor = calculateNewEaseFactor(ef, quality, params)
	next.NextReview = now.AddDate(0, 0, next.Interval)

	return next
}

// calculateNextMastery returns a copy of card with counters and mastery
// updated. Scheduling fields are left untouched.
func calculateNextMastery(card domain.Flashcard, correct bool, now time.Time) domain.Flashcard {
	next := recordAttempt(card, correct, now)
	next.MasteryLevel = calculateMastery(next.TimesCorrect, next.TimesReviewed)
	return next
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MasteryLevel is the mastery score for the given review counters. It is
// used when importing cards whose counters were recorded elsewhere.
func MasteryLevel(timesCorrect, timesReviewed int) int {
	return calculateMastery(timesCorrect, timesReviewed)
}
