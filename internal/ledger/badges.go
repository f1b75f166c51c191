package ledger

import (
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
)

// Counters is the snapshot of ledger and content counters that badge rules
// read from.
type Counters struct {
	TotalSets          int
	TotalCards         int
	CurrentStreak      int
	LongestStreak      int
	PerfectSessions    int
	CurrentLevel       int
	StudyMinutesToday  int
	TotalCardsReviewed int
	TotalXP            int
}

// CountersFrom builds a Counters snapshot from the stored aggregates.
func CountersFrom(stats domain.FlashcardStats, g domain.UserGamificationStats) Counters {
	return Counters{
		TotalSets:          stats.TotalSets,
		TotalCards:         stats.TotalCards,
		CurrentStreak:      g.CurrentStreak,
		LongestStreak:      g.LongestStreak,
		PerfectSessions:    g.PerfectSessions,
		CurrentLevel:       g.CurrentLevel,
		StudyMinutesToday:  stats.StudyTimeToday / 60,
		TotalCardsReviewed: g.TotalCardsReviewed,
		TotalXP:            g.TotalXP,
	}
}

// Selector reads the counter a badge tracks.
type Selector func(Counters) int

// BadgeRule pairs a badge template with the counter it tracks.
type BadgeRule struct {
	Badge    domain.Badge
	Selector Selector
}

func totalSets(c Counters) int          { return c.TotalSets }
func totalCards(c Counters) int         { return c.TotalCards }
func currentStreak(c Counters) int      { return c.CurrentStreak }
func perfectSessions(c Counters) int    { return c.PerfectSessions }
func currentLevel(c Counters) int       { return c.CurrentLevel }
func studyMinutesToday(c Counters) int  { return c.StudyMinutesToday }
func totalCardsReviewed(c Counters) int { return c.TotalCardsReviewed }

// badgeRules is the badge catalogue, in display order. Adding a badge means
// adding a row here.
var badgeRules = []BadgeRule{
	{
		Badge: domain.Badge{ID: "first_set", Name: "First Steps", Description: "Create your first flashcard set",
			Icon: "🌱", Category: domain.BadgeCategoryCollection, Requirement: 1, Rarity: domain.RarityCommon},
		Selector: totalSets,
	},
	{
		Badge: domain.Badge{ID: "set_collector", Name: "Collector", Description: "Create 10 flashcard sets",
			Icon: "📚", Category: domain.BadgeCategoryCollection, Requirement: 10, Rarity: domain.RarityRare},
		Selector: totalSets,
	},
	{
		Badge: domain.Badge{ID: "card_creator", Name: "Card Creator", Description: "Create 50 flashcards",
			Icon: "✏️", Category: domain.BadgeCategoryCollection, Requirement: 50, Rarity: domain.RarityCommon},
		Selector: totalCards,
	},
	{
		Badge: domain.Badge{ID: "card_hoarder", Name: "Card Hoarder", Description: "Create 500 flashcards",
			Icon: "🗃️", Category: domain.BadgeCategoryCollection, Requirement: 500, Rarity: domain.RarityEpic},
		Selector: totalCards,
	},
	{
		Badge: domain.Badge{ID: "streak_3", Name: "On a Roll", Description: "Study 3 days in a row",
			Icon: "🔥", Category: domain.BadgeCategoryStreak, Requirement: 3, Rarity: domain.RarityCommon},
		Selector: currentStreak,
	},
	{
		Badge: domain.Badge{ID: "streak_7", Name: "Week Warrior", Description: "Study 7 days in a row",
			Icon: "⚡", Category: domain.BadgeCategoryStreak, Requirement: 7, Rarity: domain.RarityRare},
		Selector: currentStreak,
	},
	{
		Badge: domain.Badge{ID: "streak_30", Name: "Unstoppable", Description: "Study 30 days in a row",
			Icon: "🏆", Category: domain.BadgeCategoryStreak, Requirement: 30, Rarity: domain.RarityLegendary},
		Selector: currentStreak,
	},
	{
		Badge: domain.Badge{ID: "perfect_session", Name: "Flawless", Description: "Finish a session without a mistake",
			Icon: "💎", Category: domain.BadgeCategoryMastery, Requirement: 1, Rarity: domain.RarityCommon},
		Selector: perfectSessions,
	},
	{
		Badge: domain.Badge{ID: "perfect_10", Name: "Perfectionist", Description: "Finish 10 perfect sessions",
			Icon: "👑", Category: domain.BadgeCategoryMastery, Requirement: 10, Rarity: domain.RarityEpic},
		Selector: perfectSessions,
	},
	{
		Badge: domain.Badge{ID: "level_5", Name: "Rising Star", Description: "Reach level 5",
			Icon: "⭐", Category: domain.BadgeCategoryLevel, Requirement: 5, Rarity: domain.RarityRare},
		Selector: currentLevel,
	},
	{
		Badge: domain.Badge{ID: "level_10", Name: "Scholar", Description: "Reach level 10",
			Icon: "🎓", Category: domain.BadgeCategoryLevel, Requirement: 10, Rarity: domain.RarityLegendary},
		Selector: currentLevel,
	},
	{
		Badge: domain.Badge{ID: "marathon", Name: "Marathon", Description: "Study for 60 minutes in one day",
			Icon: "⏱️", Category: domain.BadgeCategoryDedication, Requirement: 60, Rarity: domain.RarityRare},
		Selector: studyMinutesToday,
	},
	{
		Badge: domain.Badge{ID: "reviewer_100", Name: "Centurion", Description: "Review 100 cards",
			Icon: "💯", Category: domain.BadgeCategoryDedication, Requirement: 100, Rarity: domain.RarityCommon},
		Selector: totalCardsReviewed,
	},
	{
		Badge: domain.Badge{ID: "reviewer_1000", Name: "Memory Palace", Description: "Review 1000 cards",
			Icon: "🧠", Category: domain.BadgeCategoryDedication, Requirement: 1000, Rarity: domain.RarityEpic},
		Selector: totalCardsReviewed,
	},
}

var selectorsByID = func() map[string]Selector {
	m := make(map[string]Selector, len(badgeRules))
	for _, rule := range badgeRules {
		m[rule.Badge.ID] = rule.Selector
	}
	return m
}()

// DefaultBadges returns a fresh, locked copy of the badge catalogue.
func DefaultBadges() []domain.Badge {
	out := make([]domain.Badge, len(badgeRules))
	for i, rule := range badgeRules {
		out[i] = rule.Badge
	}
	return out
}

// SelectorFor returns the counter selector for a badge ID.
func SelectorFor(id string) (Selector, bool) {
	s, ok := selectorsByID[id]
	return s, ok
}

// UpdateBadges recomputes progress for every badge and unlocks those whose
// requirement is met. Progress never decreases and UnlockedAt, once set, is
// never changed. Badges without a rule are passed through untouched.
// It returns the updated badges and the ones unlocked by this call.
func UpdateBadges(badges []domain.Badge, c Counters, now time.Time) ([]domain.Badge, []domain.Badge) {
	updated := make([]domain.Badge, len(badges))
	var unlocked []domain.Badge

	for i, badge := range badges {
		selector, ok := SelectorFor(badge.ID)
		if !ok {
			updated[i] = badge
			continue
		}

		if progress := selector(c); progress > badge.Progress {
			badge.Progress = progress
		}

		if badge.UnlockedAt == nil && badge.Progress >= badge.Requirement {
			unlockedAt := now
			badge.UnlockedAt = &unlockedAt
			unlocked = append(unlocked, badge)
		}

		updated[i] = badge
	}

	return updated, unlocked
}

// MergeBadges overlays saved badge state onto the current catalogue so that
// badges introduced after the data was saved are present. Saved progress and
// unlock times win; catalogue metadata (name, requirement, rarity) comes from
// the catalogue. Saved badges unknown to the catalogue are kept at the end.
func MergeBadges(saved []domain.Badge) []domain.Badge {
	byID := make(map[string]domain.Badge, len(saved))
	for _, b := range saved {
		byID[b.ID] = b
	}

	merged := DefaultBadges()
	for i, def := range merged {
		prev, ok := byID[def.ID]
		if !ok {
			continue
		}
		merged[i].Progress = prev.Progress
		merged[i].UnlockedAt = prev.UnlockedAt
		delete(byID, def.ID)
	}

	for _, b := range saved {
		if _, extra := byID[b.ID]; extra {
			merged = append(merged, b)
		}
	}

	return merged
}
