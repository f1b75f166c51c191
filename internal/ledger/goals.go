package ledger

import (
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
)

// Default daily targets.
const (
	DefaultCardsToReview  = 20
	DefaultMinutesToStudy = 15
	DefaultXPToEarn       = 100
)

// DefaultDailyGoal returns a goal with the default targets and no progress.
func DefaultDailyGoal() domain.DailyGoal {
	return domain.DailyGoal{
		CardsToReview:  DefaultCardsToReview,
		MinutesToStudy: DefaultMinutesToStudy,
		XPToEarn:       DefaultXPToEarn,
	}
}

// RolloverDailyGoal clears today's progress when lastActivity is not today.
// Targets are preserved.
func RolloverDailyGoal(goal domain.DailyGoal, lastActivity *string, now time.Time) domain.DailyGoal {
	if isDay(lastActivity, DayKey(now)) {
		return goal
	}

	goal.CardsReviewed = 0
	goal.MinutesStudied = 0
	goal.XPEarned = 0
	goal.CompletedAt = nil

	return goal
}

// UpdateDailyGoal adds session progress. CompletedAt is set the first time
// all three counters meet their targets; the second return value reports
// whether that happened in this call.
func UpdateDailyGoal(goal domain.DailyGoal, cards, minutes, xp int, now time.Time) (domain.DailyGoal, bool) {
	goal.CardsReviewed += cards
	goal.MinutesStudied += minutes
	goal.XPEarned += xp

	if goal.CompletedAt == nil && goal.Met() {
		completedAt := now
		goal.CompletedAt = &completedAt
		return goal, true
	}

	return goal, false
}

// AddWeeklyXP adds xp to the bucket for now's weekday. All buckets are
// cleared first when now falls in a different week than the stored one.
// Data saved before WeekStart existed keeps its buckets.
func AddWeeklyXP(stats domain.UserGamificationStats, xp int, now time.Time) domain.UserGamificationStats {
	week := WeekStart(now)
	if stats.WeekStart != "" && stats.WeekStart != week {
		stats.WeeklyXP = [domain.DaysPerWeek]int{}
	}
	stats.WeekStart = week

	stats.WeeklyXP[now.Weekday()] += xp

	return stats
}
