package ledger

import (
	"testing"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculateLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		xp       int
		expected Level
	}{
		{name: "no xp", xp: 0, expected: Level{Level: 1, XPInLevel: 0, XPForNextLevel: 100}},
		{name: "just below level 2", xp: 99, expected: Level{Level: 1, XPInLevel: 99, XPForNextLevel: 100}},
		{name: "exactly level 2", xp: 100, expected: Level{Level: 2, XPInLevel: 0, XPForNextLevel: 150}},
		{name: "just below level 3", xp: 249, expected: Level{Level: 2, XPInLevel: 149, XPForNextLevel: 150}},
		{name: "exactly level 3", xp: 250, expected: Level{Level: 3, XPInLevel: 0, XPForNextLevel: 225}},
		{name: "level 4 floors growth", xp: 475, expected: Level{Level: 4, XPInLevel: 0, XPForNextLevel: 337}},
		{name: "level 5", xp: 812, expected: Level{Level: 5, XPInLevel: 0, XPForNextLevel: 505}},
		{name: "negative xp", xp: -10, expected: Level{Level: 1, XPInLevel: 0, XPForNextLevel: 100}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculateLevel(tc.xp))
		})
	}
}

func TestAwardXP(t *testing.T) {
	t.Parallel()

	stats := domain.UserGamificationStats{TotalXP: 90, CurrentLevel: 1, XPToNextLevel: 10}

	stats, leveled := AwardXP(stats, 5)
	assert.False(t, leveled)
	assert.Equal(t, 95, stats.TotalXP)
	assert.Equal(t, 5, stats.XPToNextLevel)

	stats, leveled = AwardXP(stats, 160)
	assert.True(t, leveled)
	assert.Equal(t, 255, stats.TotalXP)
	assert.Equal(t, 3, stats.CurrentLevel)
	assert.Equal(t, 220, stats.XPToNextLevel)

	stats, leveled = AwardXP(stats, -500)
	assert.False(t, leveled)
	assert.Equal(t, 255, stats.TotalXP, "negative awards must not reduce total XP")
}

func TestCalculateSessionXP(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		correct      int
		studied      int
		streakActive bool
		perfect      bool
		expected     int
	}{
		{name: "perfect session without streak", correct: 10, studied: 10, perfect: true, expected: 250},
		{name: "half right with streak", correct: 5, studied: 10, streakActive: true, expected: 85},
		{name: "nothing right", correct: 0, studied: 8, expected: 0},
		{name: "empty session", correct: 0, studied: 0, expected: 0},
		{name: "accuracy bonus is floored", correct: 2, studied: 3, expected: 53},
		{name: "streak bonus is floored", correct: 3, studied: 3, streakActive: true, perfect: true, expected: 186},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateSessionXP(tc.correct, tc.studied, tc.streakActive, tc.perfect)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestIsPerfect(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPerfect(5, 0))
	assert.False(t, IsPerfect(5, 1))
	assert.False(t, IsPerfect(0, 0), "an empty session is not perfect")
}
