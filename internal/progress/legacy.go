package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/domain/srs"
	"github.com/phrazzld/studyquest/internal/ledger"
)

var errEmptyLegacy = errors.New("legacy document has no data")

// legacyNamespace derives stable UUIDs for legacy records whose IDs were
// free-form strings, so repeated migrations of the same data agree.
var legacyNamespace = uuid.MustParse("0b6f3c2e-8a51-4c8e-9d0f-5a7e1c3b9f42")

// legacyDocument is the pre-versioned format: decks of front/back cards with
// flat XP and streak counters.
type legacyDocument struct {
	Decks         []legacyDeck    `json:"decks"`
	XP            int             `json:"xp"`
	Streak        int             `json:"streak"`
	LastStudyDate string          `json:"lastStudyDate"`
	Sessions      []legacySession `json:"sessions"`
}

type legacyDeck struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Cards     []legacyCard `json:"cards"`
	CreatedAt time.Time    `json:"createdAt"`
}

type legacyCard struct {
	ID       string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	Correct  int    `json:"correct"`
	Reviewed int    `json:"reviewed"`
}

type legacySession struct {
	DeckID  string    `json:"deckId"`
	Correct int       `json:"correct"`
	Total   int       `json:"total"`
	Seconds int       `json:"seconds"`
	Date    time.Time `json:"date"`
}

func legacyID(id string) uuid.UUID {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed
	}
	return uuid.NewSHA1(legacyNamespace, []byte(id))
}

// migrateLegacy converts a legacy document into the current shape on top of
// defaults. Cards without front or back text are dropped.
func migrateLegacy(raw []byte, defaults Document, now time.Time) (Document, error) {
	var legacy legacyDocument
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return Document{}, fmt.Errorf("failed to decode legacy progress: %w", err)
	}
	if legacy.Decks == nil && legacy.Sessions == nil && legacy.XP == 0 {
		return Document{}, errEmptyLegacy
	}

	doc := defaults.Clone()

	for _, deck := range legacy.Decks {
		created := deck.CreatedAt
		if created.IsZero() {
			created = now
		}

		set := domain.FlashcardSet{
			ID:        legacyID(deck.ID),
			Title:     strings.TrimSpace(deck.Name),
			Cards:     make([]domain.Flashcard, 0, len(deck.Cards)),
			CreatedAt: created,
			UpdatedAt: now,
			Tags:      []string{},
		}
		if set.Title == "" {
			set.Title = "Imported deck"
		}

		for _, lc := range deck.Cards {
			card, err := domain.NewFlashcard(lc.Front, lc.Back, domain.DifficultyMedium, now)
			if err != nil {
				continue
			}
			card.ID = legacyID(deck.ID + "/" + lc.ID)
			card.TimesReviewed = max(0, lc.Reviewed)
			card.TimesCorrect = max(0, min(lc.Correct, card.TimesReviewed))
			card.MasteryLevel = srs.MasteryLevel(card.TimesCorrect, card.TimesReviewed)
			set.Cards = append(set.Cards, *card)
			set.TotalReviews += card.TimesReviewed
		}

		doc.Sets = append(doc.Sets, set)
	}

	// Legacy sessions are oldest first
	for i, ls := range legacy.Sessions {
		incorrect := max(0, ls.Total-ls.Correct)
		session := domain.StudySession{
			ID:             uuid.NewSHA1(legacyNamespace, fmt.Appendf(nil, "session/%s/%d", ls.DeckID, i)),
			SetID:          legacyID(ls.DeckID),
			CardsStudied:   ls.Total,
			CardsCorrect:   ls.Correct,
			CardsIncorrect: incorrect,
			Duration:       max(0, ls.Seconds),
			CompletedAt:    ls.Date,
		}
		doc.Sessions = domain.PrependSession(doc.Sessions, session)

		doc.Gamification.TotalCardsReviewed += ls.Total
		doc.Gamification.TotalStudyTime += session.Duration
		doc.Stats.StudyTimeTotal += session.Duration
		if ledger.IsPerfect(ls.Total, incorrect) {
			doc.Gamification.PerfectSessions++
		}
	}

	doc.Gamification.TotalXP = max(0, legacy.XP)
	doc.Gamification.CurrentStreak = max(0, legacy.Streak)
	doc.Gamification.LongestStreak = doc.Gamification.CurrentStreak
	if day := strings.TrimSpace(legacy.LastStudyDate); day != "" {
		if _, err := time.Parse("2006-01-02", day); err == nil {
			doc.Gamification.LastActivityDate = &day
			doc.Stats.LastStudyDate = day
		}
	}

	doc = normalize(doc)

	counters := ledger.CountersFrom(doc.Stats, doc.Gamification)
	doc.Gamification.Badges, _ = ledger.UpdateBadges(doc.Gamification.Badges, counters, now)

	return doc, nil
}
