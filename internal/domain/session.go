package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxSessionHistory is the number of most recent sessions kept in the log.
const MaxSessionHistory = 100

// StudySession is the immutable record of one completed study session.
type StudySession struct {
	ID               uuid.UUID `json:"id"`
	SetID            uuid.UUID `json:"setId"`
	CardsStudied     int       `json:"cardsStudied"`
	CardsCorrect     int       `json:"cardsCorrect"`
	CardsIncorrect   int       `json:"cardsIncorrect"`
	Duration         int       `json:"duration"` // seconds
	XPEarned         int       `json:"xpEarned"`
	StreakMaintained bool      `json:"streakMaintained"`
	CompletedAt      time.Time `json:"completedAt"`
}

// Accuracy returns CardsCorrect/CardsStudied, or 0 for an empty session.
func (s StudySession) Accuracy() float64 {
	if s.CardsStudied == 0 {
		return 0
	}
	return float64(s.CardsCorrect) / float64(s.CardsStudied)
}

// PrependSession adds s to the front of a most-recent-first log and evicts
// the oldest entries beyond MaxSessionHistory.
func PrependSession(log []StudySession, s StudySession) []StudySession {
	out := make([]StudySession, 0, min(len(log)+1, MaxSessionHistory))
	out = append(out, s)
	for _, prev := range log {
		if len(out) == MaxSessionHistory {
			break
		}
		out = append(out, prev)
	}
	return out
}
