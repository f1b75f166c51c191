package srs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
)

// Common errors
var (
	ErrInvalidQuality  = errors.New("review quality must be between 0 and 5")
	ErrUnknownStrategy = errors.New("unknown scheduling strategy")
)

// Strategy names a scheduling policy.
type Strategy string

// Available strategies
const (
	// StrategySM2 schedules reviews by ease factor and growing interval.
	StrategySM2 Strategy = "sm2"
	// StrategyMastery tracks an accuracy-based mastery score and does not
	// schedule due dates.
	StrategyMastery Strategy = "mastery"
)

// Outcome is the result of reviewing one card. Quality is the SM-2 grade
// (0..5); Correct is the binary result used by the mastery strategy.
type Outcome struct {
	Quality int  `json:"quality"`
	Correct bool `json:"correct"`
}

// QualityOutcome builds an Outcome from an SM-2 grade. Grades of 3 and
// above count as correct.
func QualityOutcome(quality int) Outcome {
	return Outcome{Quality: quality, Correct: quality >= 3}
}

// BinaryOutcome builds an Outcome from a right/wrong answer, mapping it to a
// confident pass (4) or a failed recall (1) for SM-2.
func BinaryOutcome(correct bool) Outcome {
	if correct {
		return Outcome{Quality: 4, Correct: true}
	}
	return Outcome{Quality: 1, Correct: false}
}

// Scheduler produces a card's next state from a review outcome. Callers can
// stay agnostic to which strategy is active.
type Scheduler interface {
	// Name returns the strategy this scheduler implements.
	Name() Strategy

	// Review returns an updated copy of card. The input card is not modified.
	Review(card domain.Flashcard, outcome Outcome, now time.Time) (domain.Flashcard, error)

	// IsDue reports whether card should be offered for review at now.
	IsDue(card domain.Flashcard, now time.Time) bool
}

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySM2:
		return StrategySM2, nil
	case StrategyMastery, "":
		return StrategyMastery, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// New creates the scheduler for strategy. A nil params uses the defaults.
func New(strategy Strategy, params *Params) (Scheduler, error) {
	if params == nil {
		params = NewDefaultParams()
	}

	switch strategy {
	case StrategySM2:
		return &sm2Scheduler{params: params}, nil
	case StrategyMastery:
		return &masteryScheduler{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// DueCards returns the cards s considers due at now, in input order.
func DueCards(s Scheduler, cards []domain.Flashcard, now time.Time) []domain.Flashcard {
	due := make([]domain.Flashcard, 0, len(cards))
	for _, card := range cards {
		if s.IsDue(card, now) {
			due = append(due, card)
		}
	}
	return due
}

// sm2Scheduler implements the SM-2 variant.
type sm2Scheduler struct {
	params *Params
}

// Verify interface compliance at compile time
var (
	_ Scheduler = (*sm2Scheduler)(nil)
	_ Scheduler = (*masteryScheduler)(nil)
)

func (s *sm2Scheduler) Name() Strategy { return StrategySM2 }

// Review implements Scheduler.Review.
func (s *sm2Scheduler) Review(card domain.Flashcard, outcome Outcome, now time.Time) (domain.Flashcard, error) {
	if outcome.Quality < MinQuality || outcome.Quality > MaxQuality {
		return card, ErrInvalidQuality
	}
	return calculateNextSM2(card, outcome.Quality, now, s.params), nil
}

// IsDue implements Scheduler.IsDue: due once NextReview has passed.
func (s *sm2Scheduler) IsDue(card domain.Flashcard, now time.Time) bool {
	return !card.NextReview.After(now)
}

// masteryScheduler implements the accuracy/mastery heuristic.
type masteryScheduler struct{}

func (s *masteryScheduler) Name() Strategy { return StrategyMastery }

// Review implements Scheduler.Review. Only outcome.Correct is consulted.
func (s *masteryScheduler) Review(card domain.Flashcard, outcome Outcome, now time.Time) (domain.Flashcard, error) {
	return calculateNextMastery(card, outcome.Correct, now), nil
}

// IsDue implements Scheduler.IsDue: every card not yet fully mastered.
func (s *masteryScheduler) IsDue(card domain.Flashcard, _ time.Time) bool {
	return card.MasteryLevel < domain.MaxMasteryLevel
}
