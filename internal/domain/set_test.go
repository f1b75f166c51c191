package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewFlashcardSet(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	set, err := NewFlashcardSet(" Capitals ", "", []string{"Geo", "geo ", "", "europe"}, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if set.Title != "Capitals" {
		t.Errorf("Expected trimmed title, got %q", set.Title)
	}

	if len(set.Tags) != 2 || set.Tags[0] != "geo" || set.Tags[1] != "europe" {
		t.Errorf("Expected normalized tags [geo europe], got %v", set.Tags)
	}

	if set.Cards == nil || len(set.Cards) != 0 {
		t.Errorf("Expected empty non-nil card slice, got %v", set.Cards)
	}

	_, err = NewFlashcardSet("  ", "", nil, now)
	if err != ErrSetTitleEmpty {
		t.Errorf("Expected error %v, got %v", ErrSetTitleEmpty, err)
	}
}

func TestFlashcardSetValidateDuplicateCards(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Now().UTC()
	card, err := NewFlashcard("q", "a", DifficultyEasy, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	set := FlashcardSet{ID: uuid.New(), Title: "t", Cards: []Flashcard{*card, *card}}
	if err := set.Validate(); err != ErrDuplicateCardID {
		t.Errorf("Expected error %v, got %v", ErrDuplicateCardID, err)
	}
}

func TestFlashcardSetClone(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Now().UTC()
	card, _ := NewFlashcard("q", "a", DifficultyEasy, now)
	card.LastReviewedAt = &now

	set := FlashcardSet{ID: uuid.New(), Title: "t", Cards: []Flashcard{*card}, Tags: []string{"x"}}
	clone := set.Clone()
	clone.Cards[0].TimesReviewed = 9
	*clone.Cards[0].LastReviewedAt = now.Add(time.Hour)
	clone.Tags[0] = "y"

	if set.Cards[0].TimesReviewed != 0 {
		t.Error("Expected original card to be untouched")
	}
	if !set.Cards[0].LastReviewedAt.Equal(now) {
		t.Error("Expected original timestamp to be untouched")
	}
	if set.Tags[0] != "x" {
		t.Error("Expected original tags to be untouched")
	}
}

func TestPrependSessionCapsHistory(t *testing.T) {
	t.Parallel() // Enable parallel execution
	var log []StudySession
	for i := 0; i < MaxSessionHistory+5; i++ {
		log = PrependSession(log, StudySession{CardsStudied: i})
	}

	if len(log) != MaxSessionHistory {
		t.Fatalf("Expected %d sessions, got %d", MaxSessionHistory, len(log))
	}
	if log[0].CardsStudied != MaxSessionHistory+4 {
		t.Errorf("Expected most recent session first, got %d", log[0].CardsStudied)
	}
	if log[len(log)-1].CardsStudied != 5 {
		t.Errorf("Expected oldest sessions evicted, last is %d", log[len(log)-1].CardsStudied)
	}
}
