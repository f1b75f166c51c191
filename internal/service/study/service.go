package study

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/domain/srs"
)

// Common error types for Service
var (
	// ErrSetNotFound indicates that no set has the requested ID.
	ErrSetNotFound = errors.New("flashcard set not found")

	// ErrCardNotFound indicates that the set has no card with the requested ID.
	ErrCardNotFound = errors.New("card not found in set")

	// ErrInvalidInput wraps request validation and domain validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// CreateSetInput describes a new flashcard set.
type CreateSetInput struct {
	Title       string         `json:"title"       validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	Tags        []string       `json:"tags"        validate:"max=20,dive,max=50"`
	Cards       []AddCardInput `json:"cards"       validate:"dive"`
}

// AddCardInput describes a new card. An empty difficulty means medium.
type AddCardInput struct {
	Question   string            `json:"question"   validate:"required,max=5000"`
	Answer     string            `json:"answer"     validate:"required,max=5000"`
	Difficulty domain.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// ReviewInput is the result of one card review. When Quality is set it is
// used as the SM-2 grade and Correct is derived from it.
type ReviewInput struct {
	CardID  uuid.UUID `json:"cardId"  validate:"required"`
	Quality *int      `json:"quality" validate:"omitempty,min=0,max=5"`
	Correct bool      `json:"correct"`
}

// Outcome converts the input into a scheduler outcome.
func (r ReviewInput) Outcome() srs.Outcome {
	if r.Quality != nil {
		return srs.QualityOutcome(*r.Quality)
	}
	return srs.BinaryOutcome(r.Correct)
}

// SessionInput reports one completed study session.
//
// When Reviews is non-empty each review is applied to its card and the
// studied and correct counts are derived from the reviews. Otherwise the
// session is recorded from CardsStudied and CardsCorrect alone, for clients
// that already submitted reviews one at a time with ReviewCard.
type SessionInput struct {
	SetID        uuid.UUID     `json:"setId"        validate:"required"`
	Duration     int           `json:"duration"     validate:"gte=0"`
	Reviews      []ReviewInput `json:"reviews"      validate:"dive"`
	CardsStudied int           `json:"cardsStudied" validate:"gte=0"`
	CardsCorrect int           `json:"cardsCorrect" validate:"gte=0,ltefield=CardsStudied"`
}

// SessionResult summarizes what a recorded session earned.
type SessionResult struct {
	Session            domain.StudySession          `json:"session"`
	LeveledUp          bool                         `json:"leveledUp"`
	PreviousLevel      int                          `json:"previousLevel"`
	UnlockedBadges     []domain.Badge               `json:"unlockedBadges"`
	DailyGoalCompleted bool                         `json:"dailyGoalCompleted"`
	Gamification       domain.UserGamificationStats `json:"gamification"`
}

// DueCard is a card due for review together with the set that owns it.
type DueCard struct {
	SetID    uuid.UUID        `json:"setId"`
	SetTitle string           `json:"setTitle"`
	Card     domain.Flashcard `json:"card"`
}

// Service manages flashcard sets and records study sessions.
type Service interface {
	// CreateSet creates a set, optionally with initial cards.
	CreateSet(ctx context.Context, input CreateSetInput) (domain.FlashcardSet, error)

	// AddCard appends a card to a set. Returns ErrSetNotFound for an
	// unknown set.
	AddCard(ctx context.Context, setID uuid.UUID, input AddCardInput) (domain.Flashcard, error)

	// DeleteSet removes a set and its cards. Session history, XP and badge
	// progress are kept.
	DeleteSet(ctx context.Context, setID uuid.UUID) error

	ListSets(ctx context.Context) ([]domain.FlashcardSet, error)
	GetSet(ctx context.Context, setID uuid.UUID) (domain.FlashcardSet, error)

	// ReviewCard applies a single review to a card and persists it. No XP is
	// awarded until the session is recorded.
	ReviewCard(ctx context.Context, setID uuid.UUID, review ReviewInput) (domain.Flashcard, error)

	// DueCards lists cards due under the active strategy. uuid.Nil means
	// every set.
	DueCards(ctx context.Context, setID uuid.UUID) ([]DueCard, error)

	// RecordSession applies a completed session: card reviews, XP, streak,
	// weekly XP, daily goal, badges and the session log, committed as one
	// write. Milestone events are emitted after the commit.
	RecordSession(ctx context.Context, input SessionInput) (SessionResult, error)

	// Sessions returns up to limit of the most recent sessions. A
	// non-positive limit returns all of them.
	Sessions(ctx context.Context, limit int) ([]domain.StudySession, error)

	Stats(ctx context.Context) (domain.FlashcardStats, error)
	Gamification(ctx context.Context) (domain.UserGamificationStats, error)

	// Strategy names the active scheduling strategy.
	Strategy() srs.Strategy
}
