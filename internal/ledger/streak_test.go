package ledger

import (
	"testing"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayPtr(s string) *string { return &s }

func TestApplyStreak(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		last            *string
		streak          int
		longest         int
		expectedStreak  int
		expectedLongest int
	}{
		{name: "first ever activity", last: nil, streak: 0, longest: 0, expectedStreak: 1, expectedLongest: 1},
		{name: "continued from yesterday", last: dayPtr("2024-03-14"), streak: 4, longest: 4, expectedStreak: 5, expectedLongest: 5},
		{name: "already active today", last: dayPtr("2024-03-15"), streak: 4, longest: 9, expectedStreak: 4, expectedLongest: 9},
		{name: "gap restarts streak", last: dayPtr("2024-03-12"), streak: 6, longest: 6, expectedStreak: 1, expectedLongest: 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stats := domain.UserGamificationStats{
				CurrentStreak:    tc.streak,
				LongestStreak:    tc.longest,
				LastActivityDate: tc.last,
			}

			got := ApplyStreak(stats, now)

			assert.Equal(t, tc.expectedStreak, got.CurrentStreak)
			assert.Equal(t, tc.expectedLongest, got.LongestStreak)
			require.NotNil(t, got.LastActivityDate)
			assert.Equal(t, "2024-03-15", *got.LastActivityDate)
		})
	}
}

func TestApplyStreakAcrossMonthBoundary(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC)
	stats := domain.UserGamificationStats{CurrentStreak: 2, LongestStreak: 2, LastActivityDate: dayPtr("2024-02-29")}

	got := ApplyStreak(stats, now)
	assert.Equal(t, 3, got.CurrentStreak)
}

func TestCheckIdleStreak(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		last     *string
		expected int
	}{
		{name: "never active", last: nil, expected: 3},
		{name: "active today", last: dayPtr("2024-03-15"), expected: 3},
		{name: "active yesterday", last: dayPtr("2024-03-14"), expected: 3},
		{name: "missed a full day", last: dayPtr("2024-03-13"), expected: 0},
		{name: "long gap", last: dayPtr("2023-12-01"), expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stats := domain.UserGamificationStats{CurrentStreak: 3, LongestStreak: 7, LastActivityDate: tc.last}
			got := CheckIdleStreak(stats, now)
			assert.Equal(t, tc.expected, got.CurrentStreak)
			assert.Equal(t, 7, got.LongestStreak, "idle check never touches the longest streak")
			assert.Equal(t, tc.last, got.LastActivityDate)
		})
	}
}

func TestStreakActive(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	assert.True(t, StreakActive(domain.UserGamificationStats{CurrentStreak: 2, LastActivityDate: dayPtr("2024-03-14")}, now))
	assert.True(t, StreakActive(domain.UserGamificationStats{CurrentStreak: 1, LastActivityDate: dayPtr("2024-03-15")}, now))
	assert.False(t, StreakActive(domain.UserGamificationStats{CurrentStreak: 2, LastActivityDate: dayPtr("2024-03-13")}, now))
	assert.False(t, StreakActive(domain.UserGamificationStats{CurrentStreak: 0, LastActivityDate: dayPtr("2024-03-15")}, now))
	assert.False(t, StreakActive(domain.UserGamificationStats{}, now))
}
