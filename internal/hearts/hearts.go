// Package hearts implements the capped, time-regenerating hearts resource.
//
// Regeneration is a pure function of the stored state and the current time
// and is recomputed whenever the state is read; nothing runs in the
// background.
package hearts

import (
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
)

// Resource limits.
const (
	MaxHearts     = 5
	RegenInterval = 30 * time.Minute
)

// Full returns a full, non-premium hearts state.
func Full() domain.HeartsData {
	return domain.HeartsData{Hearts: MaxHearts}
}

// Clamp forces Hearts into [0, MaxHearts].
func Clamp(data domain.HeartsData) domain.HeartsData {
	data.Hearts = max(0, min(MaxHearts, data.Hearts))
	return data
}

// Regenerate credits one heart per whole RegenInterval elapsed since
// LastLostAt, up to MaxHearts. LastLostAt moves forward by the intervals
// consumed, so calling Regenerate repeatedly with the same now is a no-op.
// LastLostAt is cleared once the pool is full. Premium users are always full.
func Regenerate(data domain.HeartsData, now time.Time) domain.HeartsData {
	data = Clamp(data)

	if data.IsPremium {
		data.Hearts = MaxHearts
		return data
	}
	if data.Hearts >= MaxHearts || data.LastLostAt == nil {
		return data
	}

	elapsed := now.Sub(*data.LastLostAt)
	gained := int(elapsed / RegenInterval)
	if gained <= 0 {
		return data
	}

	data.Hearts = min(MaxHearts, data.Hearts+gained)
	if data.Hearts == MaxHearts {
		data.LastLostAt = nil
		return data
	}

	advanced := data.LastLostAt.Add(time.Duration(gained) * RegenInterval)
	data.LastLostAt = &advanced
	return data
}

// Consume regenerates, then spends one heart (never below zero) and restarts
// the regeneration timer at now. Premium users never lose hearts.
func Consume(data domain.HeartsData, now time.Time) domain.HeartsData {
	data = Regenerate(data, now)
	if data.IsPremium {
		return data
	}

	data.Hearts = max(0, data.Hearts-1)
	lostAt := now
	data.LastLostAt = &lostAt
	return data
}

// TimeUntilNext returns how long until the next heart regenerates. The
// second return value is false when nothing is regenerating: the pool is
// full, premium, or has never lost a heart.
func TimeUntilNext(data domain.HeartsData, now time.Time) (time.Duration, bool) {
	data = Regenerate(data, now)
	if data.IsPremium || data.Hearts >= MaxHearts || data.LastLostAt == nil {
		return 0, false
	}

	elapsed := now.Sub(*data.LastLostAt)
	if elapsed < 0 {
		return RegenInterval, true
	}
	return RegenInterval - elapsed%RegenInterval, true
}
