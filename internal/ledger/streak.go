package ledger

import (
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
)

// StreakActive reports whether the streak is still alive at now, that is the
// last activity was today or yesterday and the streak is positive.
func StreakActive(stats domain.UserGamificationStats, now time.Time) bool {
	if stats.CurrentStreak <= 0 {
		return false
	}
	return isDay(stats.LastActivityDate, DayKey(now)) ||
		isDay(stats.LastActivityDate, DayKey(Yesterday(now)))
}

// ApplyStreak records activity at now. A first activity or one following
// yesterday's extends the streak; a gap restarts it at 1; a second activity
// on the same day leaves it unchanged. LastActivityDate becomes today.
func ApplyStreak(stats domain.UserGamificationStats, now time.Time) domain.UserGamificationStats {
	today := DayKey(now)
	yesterday := DayKey(Yesterday(now))

	switch {
	case stats.LastActivityDate == nil || *stats.LastActivityDate == yesterday:
		stats.CurrentStreak++
	case *stats.LastActivityDate != today:
		stats.CurrentStreak = 1
	}

	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.LastActivityDate = &today

	return stats
}

// CheckIdleStreak zeroes the streak when at least one full day was missed.
// It runs when progress is loaded, not when a session completes, and leaves
// LastActivityDate untouched.
func CheckIdleStreak(stats domain.UserGamificationStats, now time.Time) domain.UserGamificationStats {
	if stats.LastActivityDate == nil {
		return stats
	}

	last := *stats.LastActivityDate
	if last != DayKey(now) && last != DayKey(Yesterday(now)) {
		stats.CurrentStreak = 0
	}

	return stats
}
