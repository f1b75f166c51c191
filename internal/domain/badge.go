package domain

import "time"

// BadgeCategory groups badges for display.
type BadgeCategory string

// Badge categories
const (
	BadgeCategoryCollection BadgeCategory = "collection"
	BadgeCategoryStreak     BadgeCategory = "streak"
	BadgeCategoryMastery    BadgeCategory = "mastery"
	BadgeCategoryDedication BadgeCategory = "dedication"
	BadgeCategoryLevel      BadgeCategory = "level"
)

// BadgeRarity ranks how hard a badge is to earn.
type BadgeRarity string

// Badge rarities
const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// Badge is an achievement whose progress tracks one ledger counter.
// UnlockedAt is a one-way lock: once set it is never cleared.
type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Category    BadgeCategory `json:"category"`
	Requirement int           `json:"requirement"`
	Progress    int           `json:"progress"`
	UnlockedAt  *time.Time    `json:"unlockedAt"`
	Rarity      BadgeRarity   `json:"rarity"`
}

// Unlocked reports whether the badge has been earned.
func (b Badge) Unlocked() bool {
	return b.UnlockedAt != nil
}
