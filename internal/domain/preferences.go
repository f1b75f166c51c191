package domain

import "time"

// Note is a free-form user note kept alongside the profile.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Preferences is the user's profile blob. It is not interpreted by the
// learning engine but travels with it through export and import.
//
// APIKey is held in plaintext in memory; the persistence layer obfuscates it
// at rest.
type Preferences struct {
	DisplayName  string            `json:"displayName"`
	Theme        string            `json:"theme"`
	APIKey       string            `json:"apiKey"`
	Notes        []Note            `json:"notes"`
	Memos        []string          `json:"memos"`
	CustomFields map[string]string `json:"customFields"`
}
