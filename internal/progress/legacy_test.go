package progress

import (
	"testing"

	"github.com/phrazzld/studyquest/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyFixture = `{
  "decks": [{
    "id": "deck-1",
    "name": " Capitals ",
    "createdAt": "2023-11-01T10:00:00Z",
    "cards": [
      {"id": "c1", "front": "France", "back": "Paris", "correct": 9, "reviewed": 9},
      {"id": "c2", "front": "Peru", "back": "Lima", "correct": 5, "reviewed": 3},
      {"id": "c3", "front": "", "back": "orphan"}
    ]
  }],
  "xp": 260,
  "streak": 4,
  "lastStudyDate": "2024-03-14",
  "sessions": [
    {"deckId": "deck-1", "correct": 3, "total": 3, "seconds": 120, "date": "2024-03-13T10:00:00Z"},
    {"deckId": "deck-1", "correct": 1, "total": 4, "seconds": 200, "date": "2024-03-14T10:00:00Z"}
  ]
}`

func TestMigrateLegacy(t *testing.T) {
	t.Parallel()
	defaults := DefaultDocument(ledger.DefaultDailyGoal())

	doc, err := migrateLegacy([]byte(legacyFixture), defaults, testNow)
	require.NoError(t, err)

	require.Len(t, doc.Sets, 1)
	set := doc.Sets[0]
	assert.Equal(t, "Capitals", set.Title)
	assert.Equal(t, legacyID("deck-1"), set.ID)
	require.Len(t, set.Cards, 2, "cards without text are dropped")

	assert.Equal(t, "France", set.Cards[0].Question)
	assert.Equal(t, "Paris", set.Cards[0].Answer)
	assert.Equal(t, 100, set.Cards[0].MasteryLevel)
	assert.Equal(t, 3, set.Cards[1].TimesCorrect, "correct is capped at reviewed")

	require.Len(t, doc.Sessions, 2)
	assert.Equal(t, 4, doc.Sessions[0].CardsStudied, "sessions are most recent first")
	assert.Equal(t, 3, doc.Sessions[0].CardsIncorrect)
	assert.Equal(t, set.ID, doc.Sessions[0].SetID)

	g := doc.Gamification
	assert.Equal(t, 260, g.TotalXP)
	assert.Equal(t, 3, g.CurrentLevel)
	assert.Equal(t, 4, g.CurrentStreak)
	require.NotNil(t, g.LastActivityDate)
	assert.Equal(t, "2024-03-14", *g.LastActivityDate)
	assert.Equal(t, 1, g.PerfectSessions)
	assert.Equal(t, 7, g.TotalCardsReviewed)
	assert.Equal(t, 320, doc.Stats.StudyTimeTotal)

	for _, b := range g.Badges {
		if b.ID == "first_set" || b.ID == "streak_3" || b.ID == "perfect_session" {
			assert.NotNil(t, b.UnlockedAt, "badge %s", b.ID)
		}
	}
}

func TestMigrateLegacyIsDeterministic(t *testing.T) {
	t.Parallel()
	defaults := DefaultDocument(ledger.DefaultDailyGoal())

	a, err := migrateLegacy([]byte(legacyFixture), defaults, testNow)
	require.NoError(t, err)
	b, err := migrateLegacy([]byte(legacyFixture), defaults, testNow)
	require.NoError(t, err)

	assert.Equal(t, a.Sets[0].ID, b.Sets[0].ID)
	assert.Equal(t, a.Sets[0].Cards[0].ID, b.Sets[0].Cards[0].ID)
	assert.Equal(t, a.Sessions[1].ID, b.Sessions[1].ID)
}

func TestMigrateLegacyRejects(t *testing.T) {
	t.Parallel()
	defaults := DefaultDocument(ledger.DefaultDailyGoal())

	testCases := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `decks: []`},
		{name: "empty object", raw: `{}`},
		{name: "wrong shape", raw: `{"decks": "many"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := migrateLegacy([]byte(tc.raw), defaults, testNow)
			assert.Error(t, err)
		})
	}
}
