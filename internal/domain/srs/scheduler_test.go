package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCard(t *testing.T, now time.Time) domain.Flashcard {
	t.Helper()
	card, err := domain.NewFlashcard("What is the capital of France?", "Paris", domain.DifficultyMedium, now)
	require.NoError(t, err, "Failed to create card")
	return *card
}

func TestNew(t *testing.T) {
	t.Parallel() // Enable parallel execution

	sm2, err := New(StrategySM2, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategySM2, sm2.Name())

	mastery, err := New(StrategyMastery, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyMastery, mastery.Name())

	_, err = New(Strategy("leitner"), nil)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestParseStrategy(t *testing.T) {
	t.Parallel() // Enable parallel execution

	s, err := ParseStrategy(" SM2 ")
	require.NoError(t, err)
	assert.Equal(t, StrategySM2, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyMastery, s, "empty strategy should default to mastery")

	_, err = ParseStrategy("fsrs")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSM2ReviewSequence(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := New(StrategySM2, nil)
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	card := newCard(t, now)

	// First correct review
	card, err = scheduler.Review(card, QualityOutcome(4), now)
	require.NoError(t, err)
	assert.Equal(t, 1, card.Interval)
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, now.AddDate(0, 0, 1), card.NextReview)

	// Second consecutive correct review
	now = card.NextReview
	card, err = scheduler.Review(card, QualityOutcome(4), now)
	require.NoError(t, err)
	assert.Equal(t, 6, card.Interval)
	assert.Equal(t, 2, card.Repetitions)

	// Third correct review grows by ease factor
	ef := card.EaseFactor
	now = card.NextReview
	card, err = scheduler.Review(card, QualityOutcome(4), now)
	require.NoError(t, err)
	assert.Equal(t, int(6*ef+0.5), card.Interval)
	assert.Equal(t, 3, card.Repetitions)
	assert.Equal(t, 3, card.TimesReviewed)
	assert.Equal(t, 3, card.TimesCorrect)

	// A miss resets repetitions and interval but still lowers the ease factor
	before := card.EaseFactor
	card, err = scheduler.Review(card, QualityOutcome(1), now)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, 1, card.Interval)
	assert.Less(t, card.EaseFactor, before)
	assert.Equal(t, 4, card.TimesReviewed)
	assert.Equal(t, 3, card.TimesCorrect)
}

func TestSM2EaseFloor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := New(StrategySM2, nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	card := newCard(t, now)
	for i := 0; i < 10; i++ {
		card, err = scheduler.Review(card, QualityOutcome(0), now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, card.EaseFactor, domain.MinEaseFactor)
		assert.GreaterOrEqual(t, card.Interval, domain.MinInterval)
	}
	assert.InDelta(t, domain.MinEaseFactor, card.EaseFactor, 1e-9)
	require.NoError(t, card.Validate())
}

func TestSM2RejectsInvalidQuality(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := New(StrategySM2, nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	card := newCard(t, now)

	for _, q := range []int{-1, 6} {
		got, err := scheduler.Review(card, Outcome{Quality: q}, now)
		assert.ErrorIs(t, err, ErrInvalidQuality)
		assert.Equal(t, card, got, "card must be returned unchanged on error")
	}
}

func TestSM2IsDue(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := New(StrategySM2, nil)
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	dueNow := newCard(t, now)
	overdue := newCard(t, now.Add(-time.Hour))
	future := newCard(t, now.Add(time.Minute))

	due := DueCards(scheduler, []domain.Flashcard{dueNow, future, overdue}, now)
	require.Len(t, due, 2)
	assert.Equal(t, dueNow.ID, due[0].ID)
	assert.Equal(t, overdue.ID, due[1].ID)
}

func TestMasteryReview(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := New(StrategyMastery, nil)
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	card := newCard(t, now)
	originalNext := card.NextReview

	card, err = scheduler.Review(card, BinaryOutcome(true), now)
	require.NoError(t, err)
	assert.Equal(t, 30, card.MasteryLevel)
	assert.Equal(t, 1, card.TimesReviewed)
	assert.Equal(t, 1, card.TimesCorrect)
	assert.Equal(t, 1, card.Interval, "mastery strategy must not touch the interval")
	assert.Equal(t, originalNext, card.NextReview, "mastery strategy must not touch the due date")
	assert.Equal(t, 0, card.Repetitions)

	card, err = scheduler.Review(card, BinaryOutcome(false), now)
	require.NoError(t, err)
	assert.Equal(t, 23, card.MasteryLevel, "a miss may lower mastery")
}

func TestMasteryMonotonicOnCorrect(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := New(StrategyMastery, nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	card := newCard(t, now)
	pattern := []bool{true, false, false, true, true, false, true, true, true, true, true, true, true}

	for _, correct := range pattern {
		before := card.MasteryLevel
		card, err = scheduler.Review(card, BinaryOutcome(correct), now)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, card.MasteryLevel, 0)
		assert.LessOrEqual(t, card.MasteryLevel, 100)
		if correct {
			assert.GreaterOrEqual(t, card.MasteryLevel, before, "correct answer must not lower mastery")
		}
	}
}

func TestMasteryIsDue(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := New(StrategyMastery, nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	learning := newCard(t, now.Add(24*time.Hour))
	mastered := newCard(t, now)
	mastered.MasteryLevel = 100

	assert.True(t, scheduler.IsDue(learning, now), "mastery strategy ignores due dates")
	assert.False(t, scheduler.IsDue(mastered, now))
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel() // Enable parallel execution

	assert.True(t, QualityOutcome(3).Correct)
	assert.False(t, QualityOutcome(2).Correct)
	assert.Equal(t, Outcome{Quality: 4, Correct: true}, BinaryOutcome(true))
	assert.Equal(t, Outcome{Quality: 1, Correct: false}, BinaryOutcome(false))
}
