package ledger

import "github.com/phrazzld/studyquest/internal/domain"

// Level curve constants: reaching level 2 costs BaseLevelXP, and each
// following level costs LevelGrowth times the previous one (floored).
const (
	BaseLevelXP = 100
	LevelGrowth = 1.5
)

// Level describes where a total XP value sits on the level curve.
type Level struct {
	Level          int `json:"level"`
	XPInLevel      int `json:"xpInLevel"`
	XPForNextLevel int `json:"xpForNextLevel"`
}

// XPToNextLevel is the XP still needed to reach the next level.
func (l Level) XPToNextLevel() int {
	return l.XPForNextLevel - l.XPInLevel
}

// CalculateLevel maps total XP to a level. Negative XP is treated as zero.
func CalculateLevel(xp int) Level {
	level, required, xpForLevel := 1, 0, BaseLevelXP

	for required+xpForLevel <= xp {
		required += xpForLevel
		level++
		xpForLevel = int(float64(xpForLevel) * LevelGrowth)
	}

	inLevel := xp - required
	if inLevel < 0 {
		inLevel = 0
	}

	return Level{Level: level, XPInLevel: inLevel, XPForNextLevel: xpForLevel}
}

// AwardXP adds xp to the ledger and recomputes the level fields. Negative
// awards are ignored so TotalXP never decreases. The second return value
// reports whether the award crossed at least one level boundary.
func AwardXP(stats domain.UserGamificationStats, xp int) (domain.UserGamificationStats, bool) {
	if xp > 0 {
		stats.TotalXP += xp
	}

	before := stats.CurrentLevel
	lvl := CalculateLevel(stats.TotalXP)
	stats.CurrentLevel = lvl.Level
	stats.XPToNextLevel = lvl.XPToNextLevel()

	return stats, lvl.Level > before
}
