package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/ledger"
)

var errNotObject = errors.New("document is not a JSON object")

// decodeDocument decodes raw over a copy of defaults. Fields absent from raw
// keep their default value, nested structs are merged field by field, and
// badges are merged by ID onto the catalogue.
func decodeDocument(raw []byte, defaults Document) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Document{}, errNotObject
	}

	doc := defaults.Clone()
	doc.Gamification.Badges = nil

	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode progress document: %w", err)
	}

	doc.Gamification.Badges = ledger.MergeBadges(doc.Gamification.Badges)
	return normalize(doc), nil
}

// normalize repairs a decoded document so every invariant holds: nil
// collections become empty, out-of-range card fields are clamped, the
// session log is capped, and derived counters (level, content stats) are
// recomputed.
func normalize(doc Document) Document {
	doc.Version = CurrentVersion

	if doc.Sets == nil {
		doc.Sets = []domain.FlashcardSet{}
	}
	for i := range doc.Sets {
		set := &doc.Sets[i]
		if set.Cards == nil {
			set.Cards = []domain.Flashcard{}
		}
		if set.Tags == nil {
			set.Tags = []string{}
		}
		set.TotalReviews = max(0, set.TotalReviews)
		for j := range set.Cards {
			set.Cards[j] = repairCard(set.Cards[j])
		}
	}

	if doc.Sessions == nil {
		doc.Sessions = []domain.StudySession{}
	}
	if len(doc.Sessions) > domain.MaxSessionHistory {
		doc.Sessions = doc.Sessions[:domain.MaxSessionHistory]
	}

	g := &doc.Gamification
	g.TotalXP = max(0, g.TotalXP)
	g.CurrentStreak = max(0, g.CurrentStreak)
	g.LongestStreak = max(g.LongestStreak, g.CurrentStreak)
	doc.Gamification, _ = ledger.AwardXP(doc.Gamification, 0)

	doc.Stats = ledger.RefreshContentStats(doc.Stats, doc.Sets)

	return doc
}

func repairCard(c domain.Flashcard) domain.Flashcard {
	if !c.Difficulty.Valid() {
		c.Difficulty = domain.DifficultyMedium
	}
	c.TimesReviewed = max(0, c.TimesReviewed)
	c.TimesCorrect = max(0, min(c.TimesCorrect, c.TimesReviewed))
	c.MasteryLevel = max(0, min(domain.MaxMasteryLevel, c.MasteryLevel))
	c.Interval = max(domain.MinInterval, c.Interval)
	c.Repetitions = max(0, c.Repetitions)
	if c.EaseFactor == 0 {
		c.EaseFactor = domain.DefaultEaseFactor
	}
	c.EaseFactor = max(domain.MinEaseFactor, c.EaseFactor)
	return c
}

// applyDayRollover runs the checks that depend on the calendar day having
// moved on since the last activity: the idle-streak reset, the daily goal
// and study-time rollovers, and the weekly XP histogram rollover.
func applyDayRollover(doc Document, now time.Time) Document {
	lastActivity := doc.Gamification.LastActivityDate

	doc.Gamification = ledger.CheckIdleStreak(doc.Gamification, now)
	doc.Gamification.DailyGoal = ledger.RolloverDailyGoal(doc.Gamification.DailyGoal, lastActivity, now)
	doc.Gamification = ledger.AddWeeklyXP(doc.Gamification, 0, now)
	doc.Stats = ledger.RolloverStudyTime(doc.Stats, now)

	return doc
}
