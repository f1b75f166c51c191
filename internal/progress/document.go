package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/ledger"
)

// Storage keys.
const (
	StorageKey       = "flashcard-progress"
	LegacyStorageKey = "flashcard-progress-v0"
	PreferencesKey   = "user-preferences"
)

// CurrentVersion is written into every saved document.
const CurrentVersion = 2

// Document is the whole persisted learning state.
type Document struct {
	Version      int                          `json:"version"`
	Sets         []domain.FlashcardSet        `json:"sets"`
	Sessions     []domain.StudySession        `json:"sessions"`
	Stats        domain.FlashcardStats        `json:"stats"`
	Gamification domain.UserGamificationStats `json:"gamification"`
	UpdatedAt    time.Time                    `json:"updatedAt"`
}

// DefaultDocument returns an empty document with the given daily goal
// targets, level 1 and the full badge catalogue locked.
func DefaultDocument(goal domain.DailyGoal) Document {
	lvl := ledger.CalculateLevel(0)

	goal.CardsReviewed, goal.MinutesStudied, goal.XPEarned = 0, 0, 0
	goal.CompletedAt = nil

	return Document{
		Version:  CurrentVersion,
		Sets:     []domain.FlashcardSet{},
		Sessions: []domain.StudySession{},
		Gamification: domain.UserGamificationStats{
			CurrentLevel:  lvl.Level,
			XPToNextLevel: lvl.XPToNextLevel(),
			Badges:        ledger.DefaultBadges(),
			DailyGoal:     goal,
		},
	}
}

// SetIndex returns the index of the set with the given ID, or -1.
func (d *Document) SetIndex(id uuid.UUID) int {
	for i := range d.Sets {
		if d.Sets[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := d

	out.Sets = make([]domain.FlashcardSet, len(d.Sets))
	for i, set := range d.Sets {
		out.Sets[i] = set.Clone()
	}

	out.Sessions = append([]domain.StudySession(nil), d.Sessions...)
	if out.Sessions == nil {
		out.Sessions = []domain.StudySession{}
	}

	g := d.Gamification
	if g.LastActivityDate != nil {
		day := *g.LastActivityDate
		g.LastActivityDate = &day
	}
	g.Badges = make([]domain.Badge, len(d.Gamification.Badges))
	for i, b := range d.Gamification.Badges {
		if b.UnlockedAt != nil {
			at := *b.UnlockedAt
			b.UnlockedAt = &at
		}
		g.Badges[i] = b
	}
	if g.DailyGoal.CompletedAt != nil {
		at := *g.DailyGoal.CompletedAt
		g.DailyGoal.CompletedAt = &at
	}
	out.Gamification = g

	return out
}
