package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Set-specific validation errors
var (
	// ErrSetIDEmpty is returned when a set ID is empty or nil.
	ErrSetIDEmpty = errors.New("set ID cannot be empty")

	// ErrSetTitleEmpty is returned when a set has no title.
	ErrSetTitleEmpty = errors.New("set title cannot be empty")

	// ErrDuplicateCardID is returned when two cards in one set share an ID.
	ErrDuplicateCardID = errors.New("duplicate card ID in set")
)

// FlashcardSet is a titled collection of cards. A set owns its cards
// exclusively; cards are never shared between sets.
type FlashcardSet struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Cards         []Flashcard `json:"cards"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	TotalReviews  int         `json:"totalReviews"`
	LastStudiedAt *time.Time  `json:"lastStudiedAt"`
	Tags          []string    `json:"tags"`
}

// NewFlashcardSet creates an empty set with the given title and tags.
func NewFlashcardSet(title, description string, tags []string, now time.Time) (*FlashcardSet, error) {
	set := &FlashcardSet{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Cards:       []Flashcard{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        normalizeTags(tags),
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	return set, nil
}

// Validate checks the set and every card it owns.
func (s *FlashcardSet) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSetIDEmpty
	}

	if s.Title == "" {
		return ErrSetTitleEmpty
	}

	seen := make(map[uuid.UUID]struct{}, len(s.Cards))
	for i := range s.Cards {
		if err := s.Cards[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Cards[i].ID]; dup {
			return ErrDuplicateCardID
		}
		seen[s.Cards[i].ID] = struct{}{}
	}

	return nil
}

// CardIndex returns the position of the card with the given ID, or -1.
func (s *FlashcardSet) CardIndex(id uuid.UUID) int {
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the set, so callers can mutate the copy
// without touching the original's cards.
func (s FlashcardSet) Clone() FlashcardSet {
	out := s
	out.Cards = make([]Flashcard, len(s.Cards))
	for i, c := range s.Cards {
		if c.LastReviewedAt != nil {
			t := *c.LastReviewedAt
			c.LastReviewedAt = &t
		}
		out.Cards[i] = c
	}
	out.Tags = append([]string(nil), s.Tags...)
	if s.LastStudiedAt != nil {
		t := *s.LastStudiedAt
		out.LastStudiedAt = &t
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
