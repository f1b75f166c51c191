package ledger

import (
	"testing"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolloverDailyGoal(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	completed := now.Add(-24 * time.Hour)

	goal := domain.DailyGoal{
		CardsToReview: 30, CardsReviewed: 40,
		MinutesToStudy: 10, MinutesStudied: 12,
		XPToEarn: 200, XPEarned: 250,
		CompletedAt: &completed,
	}

	t.Run("same day is untouched", func(t *testing.T) {
		assert.Equal(t, goal, RolloverDailyGoal(goal, dayPtr("2024-03-15"), now))
	})

	t.Run("new day resets progress and keeps targets", func(t *testing.T) {
		got := RolloverDailyGoal(goal, dayPtr("2024-03-14"), now)
		assert.Equal(t, domain.DailyGoal{CardsToReview: 30, MinutesToStudy: 10, XPToEarn: 200}, got)
	})

	t.Run("no previous activity resets progress", func(t *testing.T) {
		got := RolloverDailyGoal(goal, nil, now)
		assert.Zero(t, got.CardsReviewed)
		assert.Equal(t, 30, got.CardsToReview)
	})
}

func TestUpdateDailyGoal(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	goal := DefaultDailyGoal()

	goal, done := UpdateDailyGoal(goal, 25, 5, 150, now)
	assert.False(t, done, "minutes target not met yet")
	assert.Nil(t, goal.CompletedAt)

	goal, done = UpdateDailyGoal(goal, 0, 10, 0, now)
	assert.True(t, done)
	require.NotNil(t, goal.CompletedAt)
	assert.Equal(t, now, *goal.CompletedAt)

	// Progress beyond the target is kept and completion is not re-reported
	later := now.Add(time.Hour)
	goal, done = UpdateDailyGoal(goal, 10, 10, 10, later)
	assert.False(t, done)
	assert.Equal(t, now, *goal.CompletedAt)
	assert.Equal(t, 35, goal.CardsReviewed)
}

func TestAddWeeklyXP(t *testing.T) {
	t.Parallel()
	// 2024-03-13 is a Wednesday
	wed := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	stats := AddWeeklyXP(domain.UserGamificationStats{}, 40, wed)
	assert.Equal(t, 40, stats.WeeklyXP[time.Wednesday])
	assert.Equal(t, "2024-03-10", stats.WeekStart)

	stats = AddWeeklyXP(stats, 15, wed.Add(time.Hour))
	assert.Equal(t, 55, stats.WeeklyXP[time.Wednesday])

	sat := wed.AddDate(0, 0, 3)
	stats = AddWeeklyXP(stats, 5, sat)
	assert.Equal(t, 5, stats.WeeklyXP[time.Saturday])
	assert.Equal(t, 55, stats.WeeklyXP[time.Wednesday])

	// Next week clears the histogram
	nextMon := wed.AddDate(0, 0, 5)
	stats = AddWeeklyXP(stats, 7, nextMon)
	assert.Equal(t, [7]int{0, 7, 0, 0, 0, 0, 0}, stats.WeeklyXP)
	assert.Equal(t, "2024-03-17", stats.WeekStart)
}

func TestAddWeeklyXPKeepsLegacyBuckets(t *testing.T) {
	t.Parallel()
	wed := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	stats := domain.UserGamificationStats{WeeklyXP: [7]int{1, 2, 3, 4, 5, 6, 7}}
	stats = AddWeeklyXP(stats, 10, wed)
	assert.Equal(t, [7]int{1, 2, 3, 14, 5, 6, 7}, stats.WeeklyXP)
}

func TestRefreshContentStats(t *testing.T) {
	t.Parallel()

	sets := []domain.FlashcardSet{
		{Cards: []domain.Flashcard{{MasteryLevel: 100}, {MasteryLevel: 80}, {MasteryLevel: 10}}},
		{Cards: []domain.Flashcard{{MasteryLevel: 0}}},
		{Cards: []domain.Flashcard{}},
	}

	stats := RefreshContentStats(domain.FlashcardStats{StudyTimeTotal: 99, TotalReviews: 7}, sets)
	assert.Equal(t, 3, stats.TotalSets)
	assert.Equal(t, 4, stats.TotalCards)
	assert.Equal(t, 2, stats.CardsMastered)
	assert.InDelta(t, 47.5, stats.AverageMastery, 1e-9)
	assert.Equal(t, 99, stats.StudyTimeTotal)
	assert.Equal(t, 7, stats.TotalReviews)
}

func TestRecordStudyTime(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	stats := domain.FlashcardStats{StudyTimeToday: 600, StudyTimeTotal: 1000, LastStudyDate: "2024-03-14"}
	stats = RecordStudyTime(stats, 120, 12, now)

	assert.Equal(t, 120, stats.StudyTimeToday, "yesterday's time is rolled over")
	assert.Equal(t, 1120, stats.StudyTimeTotal)
	assert.Equal(t, 12, stats.TotalReviews)
	assert.Equal(t, "2024-03-15", stats.LastStudyDate)

	stats = RecordStudyTime(stats, 60, 3, now)
	assert.Equal(t, 180, stats.StudyTimeToday)
}
