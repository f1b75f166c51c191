package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the author-assigned difficulty of a flashcard.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Scheduling defaults for a freshly created card.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MinInterval       = 1
	MaxMasteryLevel   = 100
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardQuestionEmpty is returned when a card has no question text.
	ErrCardQuestionEmpty = errors.New("card question cannot be empty")

	// ErrCardAnswerEmpty is returned when a card has no answer text.
	ErrCardAnswerEmpty = errors.New("card answer cannot be empty")

	// ErrInvalidDifficulty is returned for a difficulty outside easy/medium/hard.
	ErrInvalidDifficulty = errors.New("invalid card difficulty")

	// ErrInvalidReviewCounts is returned when TimesCorrect exceeds TimesReviewed
	// or either counter is negative.
	ErrInvalidReviewCounts = errors.New("invalid review counters")

	// ErrInvalidMastery is returned when MasteryLevel falls outside [0,100].
	ErrInvalidMastery = errors.New("mastery level must be between 0 and 100")

	// ErrInvalidInterval is returned when Interval is below one day.
	ErrInvalidInterval = errors.New("interval must be at least 1 day")

	// ErrInvalidEaseFactor is returned when EaseFactor is below the SM-2 floor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
)

// Flashcard is a single question/answer pair owned by a FlashcardSet.
// Its scheduling fields are mutated only by an srs.Scheduler.
type Flashcard struct {
	ID             uuid.UUID  `json:"id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Difficulty     Difficulty `json:"difficulty"`
	TimesReviewed  int        `json:"timesReviewed"`
	TimesCorrect   int        `json:"timesCorrect"`
	LastReviewedAt *time.Time `json:"lastReviewedAt"`
	MasteryLevel   int        `json:"masteryLevel"`
	Interval       int        `json:"interval"`    // days
	EaseFactor     float64    `json:"easeFactor"`  // SM-2 ease, never below 1.3
	Repetitions    int        `json:"repetitions"` // consecutive correct recalls
	NextReview     time.Time  `json:"nextReview"`
}

// NewFlashcard creates a card that is due immediately. An empty difficulty
// defaults to medium.
func NewFlashcard(question, answer string, difficulty Difficulty, now time.Time) (*Flashcard, error) {
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	card := &Flashcard{
		ID:         uuid.New(),
		Question:   strings.TrimSpace(question),
		Answer:     strings.TrimSpace(answer),
		Difficulty: difficulty,
		Interval:   MinInterval,
		EaseFactor: DefaultEaseFactor,
		NextReview: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Question == "" {
		return ErrCardQuestionEmpty
	}

	if c.Answer == "" {
		return ErrCardAnswerEmpty
	}

	if !c.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}

	if c.TimesReviewed < 0 || c.TimesCorrect < 0 || c.TimesCorrect > c.TimesReviewed {
		return ErrInvalidReviewCounts
	}

	if c.MasteryLevel < 0 || c.MasteryLevel > MaxMasteryLevel {
		return ErrInvalidMastery
	}

	if c.Interval < MinInterval {
		return ErrInvalidInterval
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	return nil
}

// Accuracy returns the fraction of reviews answered correctly, or 0 for an
// unreviewed card.
func (c *Flashcard) Accuracy() float64 {
	if c.TimesReviewed == 0 {
		return 0
	}
	return float64(c.TimesCorrect) / float64(c.TimesReviewed)
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}
