package domain

import "time"

// HeartsData is the persisted state of the hearts resource. It lives in its
// own blob, independent of the progress document.
type HeartsData struct {
	Hearts     int        `json:"hearts"`
	LastLostAt *time.Time `json:"lastLostAt"`
	IsPremium  bool       `json:"isPremium"`
}
