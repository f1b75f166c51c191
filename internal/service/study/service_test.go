package study

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/domain/srs"
	"github.com/phrazzld/studyquest/internal/events"
	"github.com/phrazzld/studyquest/internal/platform/clock"
	"github.com/phrazzld/studyquest/internal/platform/memstore"
	"github.com/phrazzld/studyquest/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-15 is a Friday
var testNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      Service
	store    *progress.Store
	clock    *clock.Fixed
	recorder *events.Recorder
}

func newFixture(t *testing.T, strategy srs.Strategy, opts ...progress.Option) fixture {
	t.Helper()
	clk := clock.NewFixed(testNow)
	store := progress.NewStore(memstore.New(), clk, nil, opts...)

	scheduler, err := srs.New(strategy, nil)
	require.NoError(t, err)

	recorder := events.NewRecorder(100)
	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(recorder)

	return fixture{
		svc:      NewService(store, scheduler, emitter, clk, nil),
		store:    store,
		clock:    clk,
		recorder: recorder,
	}
}

func (f fixture) createSet(t *testing.T, cards int) domain.FlashcardSet {
	t.Helper()
	input := CreateSetInput{Title: "Capitals"}
	for range cards {
		input.Cards = append(input.Cards, AddCardInput{Question: "Capital of France?", Answer: "Paris"})
	}
	set, err := f.svc.CreateSet(context.Background(), input)
	require.NoError(t, err)
	return set
}

func eventTypes(evs []events.Event) []string {
	types := make([]string, len(evs))
	for i, e := range evs {
		types[i] = e.Type
	}
	return types
}

func TestCreateSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, srs.StrategyMastery)

	set := f.createSet(t, 2)
	assert.NotEqual(t, uuid.Nil, set.ID)
	require.Len(t, set.Cards, 2)
	assert.Equal(t, domain.DifficultyMedium, set.Cards[0].Difficulty)

	sets, err := f.svc.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)

	got, err := f.svc.GetSet(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, "Capitals", got.Title)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSets)
	assert.Equal(t, 2, stats.TotalCards)

	recent := f.recorder.Recent(0)
	require.Len(t, recent, 1)
	var payload events.BadgeUnlocked
	require.NoError(t, recent[0].UnmarshalPayload(&payload))
	assert.Equal(t, "first_set", payload.Badge.ID)
}

func TestCreateSetValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input CreateSetInput
	}{
		{name: "missing title", input: CreateSetInput{}},
		{name: "blank title", input: CreateSetInput{Title: "   "}},
		{name: "card without answer", input: CreateSetInput{Title: "x", Cards: []AddCardInput{{Question: "q"}}}},
		{name: "bad difficulty", input: CreateSetInput{Title: "x", Cards: []AddCardInput{{Question: "q", Answer: "a", Difficulty: "brutal"}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, srs.StrategyMastery)
			_, err := f.svc.CreateSet(context.Background(), tc.input)
			require.ErrorIs(t, err, ErrInvalidInput)

			sets, err := f.svc.ListSets(context.Background())
			require.NoError(t, err)
			assert.Empty(t, sets)
		})
	}
}

func TestAddCardAndDeleteSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, srs.StrategyMastery)
	set := f.createSet(t, 1)

	card, err := f.svc.AddCard(ctx, set.ID, AddCardInput{Question: "2+2", Answer: "4", Difficulty: domain.DifficultyEasy})
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyEasy, card.Difficulty)

	_, err = f.svc.AddCard(ctx, uuid.New(), AddCardInput{Question: "q", Answer: "a"})
	require.ErrorIs(t, err, ErrSetNotFound)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCards)

	require.NoError(t, f.svc.DeleteSet(ctx, set.ID))
	require.ErrorIs(t, f.svc.DeleteSet(ctx, set.ID), ErrSetNotFound)

	stats, err = f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSets)
	assert.Zero(t, stats.TotalCards)

	g, err := f.svc.Gamification(ctx)
	require.NoError(t, err)
	assert.NotNil(t, g.Badges[0].UnlockedAt, "deleting content never relocks a badge")
}

func TestReviewCardSM2(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, srs.StrategySM2)
	set := f.createSet(t, 1)
	cardID := set.Cards[0].ID

	quality := 5
	card, err := f.svc.ReviewCard(ctx, set.ID, ReviewInput{CardID: cardID, Quality: &quality})
	require.NoError(t, err)
	assert.Equal(t, 1, card.Interval)
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, testNow.AddDate(0, 0, 1), card.NextReview)
	assert.InDelta(t, 2.6, card.EaseFactor, 1e-9)

	got, err := f.svc.GetSet(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, card, got.Cards[0])
	assert.Equal(t, 1, got.TotalReviews)

	due, err := f.svc.DueCards(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, due, "reviewed card is scheduled for tomorrow")

	f.clock.Advance(24 * time.Hour)
	due, err = f.svc.DueCards(ctx, set.ID)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, set.ID, due[0].SetID)
	assert.Equal(t, "Capitals", due[0].SetTitle)
}

func TestReviewCardErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, srs.StrategySM2)
	set := f.createSet(t, 1)

	bad := 9
	_, err := f.svc.ReviewCard(ctx, set.ID, ReviewInput{CardID: set.Cards[0].ID, Quality: &bad})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ReviewCard(ctx, set.ID, ReviewInput{CardID: uuid.New(), Correct: true})
	require.ErrorIs(t, err, ErrCardNotFound)

	_, err = f.svc.ReviewCard(ctx, uuid.New(), ReviewInput{CardID: set.Cards[0].ID})
	require.ErrorIs(t, err, ErrSetNotFound)

	_, err = f.svc.ReviewCard(ctx, set.ID, ReviewInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDueCardsMastery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, srs.StrategyMastery)
	set := f.createSet(t, 2)

	due, err := f.svc.DueCards(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	_, err = f.svc.DueCards(ctx, uuid.New())
	require.ErrorIs(t, err, ErrSetNotFound)

	// Nine straight correct answers reach full mastery
	for range 9 {
		_, err := f.svc.ReviewCard(ctx, set.ID, ReviewInput{CardID: set.Cards[0].ID, Correct: true})
		require.NoError(t, err)
	}

	due, err = f.svc.DueCards(ctx, set.ID)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, set.Cards[1].ID, due[0].Card.ID)
	assert.Equal(t, srs.StrategyMastery, f.svc.Strategy())
}
