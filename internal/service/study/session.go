package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/events"
	"github.com/phrazzld/studyquest/internal/ledger"
	"github.com/phrazzld/studyquest/internal/platform/logger"
	"github.com/phrazzld/studyquest/internal/progress"
)

// RecordSession implements Service.RecordSession.
func (s *serviceImpl) RecordSession(ctx context.Context, input SessionInput) (SessionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateInput(input); err != nil {
		return SessionResult{}, err
	}

	now := s.clock.Now()
	var result SessionResult

	committed, err := s.store.Mutate(ctx, func(doc *progress.Document) error {
		r, err := s.applySession(doc, input, now)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSetNotFound) || errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrInvalidInput) {
			log.Warn("rejected study session",
				slog.String("set_id", input.SetID.String()),
				slog.String("error", err.Error()))
			return SessionResult{}, err
		}
		log.Error("failed to record session",
			slog.String("error", err.Error()),
			slog.String("set_id", input.SetID.String()))
		return SessionResult{}, fmt.Errorf("failed to record session: %w", err)
	}
	result.Gamification = committed.Gamification

	log.Info("recorded study session",
		slog.String("session_id", result.Session.ID.String()),
		slog.String("set_id", input.SetID.String()),
		slog.Int("cards_studied", result.Session.CardsStudied),
		slog.Int("xp_earned", result.Session.XPEarned),
		slog.Int("streak", committed.Gamification.CurrentStreak))

	s.emitSession(ctx, result, now)
	return result, nil
}

// applySession runs every step of a session against doc. doc is a working
// copy owned by the store, so a returned error discards all changes.
func (s *serviceImpl) applySession(doc *progress.Document, input SessionInput, now time.Time) (SessionResult, error) {
	set, err := findSet(doc, input.SetID)
	if err != nil {
		return SessionResult{}, err
	}

	// Per-card scheduling
	studied, correct := input.CardsStudied, input.CardsCorrect
	if len(input.Reviews) > 0 {
		studied, correct = 0, 0
		for _, review := range input.Reviews {
			if _, err := applyReview(s.scheduler, set, review, now); err != nil {
				return SessionResult{}, err
			}
			studied++
			if review.Outcome().Correct {
				correct++
			}
		}
		// Reviews sent one at a time through ReviewCard were counted then
		set.TotalReviews += studied
	}
	incorrect := studied - correct

	set.LastStudiedAt = &now
	set.UpdatedAt = now

	g := doc.Gamification
	previousLevel := g.CurrentLevel
	lastActivity := g.LastActivityDate

	// XP and level
	streakActive := ledger.StreakActive(g, now)
	perfect := ledger.IsPerfect(studied, incorrect)
	xp := ledger.CalculateSessionXP(correct, studied, streakActive, perfect)

	g, leveled := ledger.AwardXP(g, xp)
	if perfect {
		g.PerfectSessions++
	}
	g.TotalCardsReviewed += studied
	g.TotalStudyTime += input.Duration

	// Streak
	g = ledger.ApplyStreak(g, now)

	// Weekly XP
	g = ledger.AddWeeklyXP(g, xp, now)

	// Daily goal
	var goalDone bool
	g.DailyGoal = ledger.RolloverDailyGoal(g.DailyGoal, lastActivity, now)
	g.DailyGoal, goalDone = ledger.UpdateDailyGoal(g.DailyGoal, studied, input.Duration/60, xp, now)

	doc.Gamification = g
	doc.Stats = ledger.RecordStudyTime(doc.Stats, input.Duration, studied, now)

	// Badges
	unlocked := settleContent(doc, now)

	// Session log
	session := domain.StudySession{
		ID:               uuid.New(),
		SetID:            set.ID,
		CardsStudied:     studied,
		CardsCorrect:     correct,
		CardsIncorrect:   incorrect,
		Duration:         input.Duration,
		XPEarned:         xp,
		StreakMaintained: streakActive,
		CompletedAt:      now,
	}
	doc.Sessions = domain.PrependSession(doc.Sessions, session)

	return SessionResult{
		Session:            session,
		LeveledUp:          leveled,
		PreviousLevel:      previousLevel,
		UnlockedBadges:     unlocked,
		DailyGoalCompleted: goalDone,
	}, nil
}

func (s *serviceImpl) emit(ctx context.Context, eventType string, payload any, at time.Time) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewEvent(eventType, payload, at)
	if err != nil {
		s.logger.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}

	// The change is already committed; a handler failure is only logged.
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

func (s *serviceImpl) emitBadges(ctx context.Context, unlocked []domain.Badge, at time.Time) {
	for _, badge := range unlocked {
		s.emit(ctx, events.TypeBadgeUnlocked, events.BadgeUnlocked{Badge: badge}, at)
	}
}

func (s *serviceImpl) emitSession(ctx context.Context, result SessionResult, at time.Time) {
	s.emit(ctx, events.TypeSessionRecorded, events.SessionRecorded{Session: result.Session}, at)

	if result.LeveledUp {
		s.emit(ctx, events.TypeLevelUp, events.LevelUp{
			From:    result.PreviousLevel,
			To:      result.Gamification.CurrentLevel,
			TotalXP: result.Gamification.TotalXP,
		}, at)
	}

	s.emitBadges(ctx, result.UnlockedBadges, at)

	if result.DailyGoalCompleted {
		s.emit(ctx, events.TypeDailyGoalCompleted, events.DailyGoalCompleted{Goal: result.Gamification.DailyGoal}, at)
	}
}
