package ledger

import "time"

// dayLayout is the calendar-day key format used for streaks and rollovers.
const dayLayout = "2006-01-02"

// DayKey returns the calendar day of t, in t's location, as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// Yesterday returns the same wall-clock time one calendar day earlier.
func Yesterday(t time.Time) time.Time {
	return t.AddDate(0, 0, -1)
}

// WeekStart returns the day key of the Sunday that begins t's week.
func WeekStart(t time.Time) string {
	return DayKey(t.AddDate(0, 0, -int(t.Weekday())))
}

func isDay(key *string, day string) bool {
	return key != nil && *key == day
}
