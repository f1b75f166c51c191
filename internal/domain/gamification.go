package domain

import "time"

// DaysPerWeek is the length of the weekly XP histogram.
const DaysPerWeek = 7

// DailyGoal holds the three daily targets and today's progress against them.
// Progress may exceed a target; CompletedAt is set once and never cleared.
type DailyGoal struct {
	CardsToReview  int        `json:"cardsToReview"`
	CardsReviewed  int        `json:"cardsReviewed"`
	MinutesToStudy int        `json:"minutesToStudy"`
	MinutesStudied int        `json:"minutesStudied"`
	XPToEarn       int        `json:"xpToEarn"`
	XPEarned       int        `json:"xpEarned"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// Met reports whether every progress counter has reached its target.
func (g DailyGoal) Met() bool {
	return g.CardsReviewed >= g.CardsToReview &&
		g.MinutesStudied >= g.MinutesToStudy &&
		g.XPEarned >= g.XPToEarn
}

// UserGamificationStats is the durable state of the gamification ledger.
// LastActivityDate and WeekStart are calendar-day keys (YYYY-MM-DD).
type UserGamificationStats struct {
	TotalXP            int              `json:"totalXp"`
	CurrentLevel       int              `json:"currentLevel"`
	XPToNextLevel      int              `json:"xpToNextLevel"`
	CurrentStreak      int              `json:"currentStreak"`
	LongestStreak      int              `json:"longestStreak"`
	LastActivityDate   *string          `json:"lastActivityDate"`
	TotalStudyTime     int              `json:"totalStudyTime"` // seconds
	TotalCardsReviewed int              `json:"totalCardsReviewed"`
	PerfectSessions    int              `json:"perfectSessions"`
	Badges             []Badge          `json:"badges"`
	DailyGoal          DailyGoal        `json:"dailyGoal"`
	WeeklyXP           [DaysPerWeek]int `json:"weeklyXp"`
	WeekStart          string           `json:"weekStart,omitempty"`
}

// FlashcardStats aggregates content and study-time counters across sets.
type FlashcardStats struct {
	TotalSets      int     `json:"totalSets"`
	TotalCards     int     `json:"totalCards"`
	TotalReviews   int     `json:"totalReviews"`
	CardsMastered  int     `json:"cardsMastered"`
	AverageMastery float64 `json:"averageMastery"`
	StudyTimeToday int     `json:"studyTimeToday"` // seconds
	StudyTimeTotal int     `json:"studyTimeTotal"` // seconds
	LastStudyDate  string  `json:"lastStudyDate,omitempty"`
}
