package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/domain/srs"
	"github.com/phrazzld/studyquest/internal/events"
	"github.com/phrazzld/studyquest/internal/ledger"
	"github.com/phrazzld/studyquest/internal/platform/clock"
	"github.com/phrazzld/studyquest/internal/platform/logger"
	"github.com/phrazzld/studyquest/internal/progress"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	store     *progress.Store
	scheduler srs.Scheduler
	emitter   events.EventEmitter
	clock     clock.Clock
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService creates a Service. A nil emitter drops events and a nil clock
// uses the system clock.
func NewService(
	store *progress.Store,
	scheduler srs.Scheduler,
	emitter events.EventEmitter,
	clk clock.Clock,
	logger *slog.Logger,
) Service {
	if store == nil {
		panic("store cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		store:     store,
		scheduler: scheduler,
		emitter:   emitter,
		clock:     clk,
		validate:  validator.New(),
		logger:    logger.With(slog.String("component", "study_service")),
	}
}

func (s *serviceImpl) Strategy() srs.Strategy {
	return s.scheduler.Name()
}

func (s *serviceImpl) validateInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func findSet(doc *progress.Document, setID uuid.UUID) (*domain.FlashcardSet, error) {
	idx := doc.SetIndex(setID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, setID)
	}
	return &doc.Sets[idx], nil
}

func newCard(input AddCardInput, now time.Time) (*domain.Flashcard, error) {
	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}
	card, err := domain.NewFlashcard(input.Question, input.Answer, difficulty, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return card, nil
}

// settleContent refreshes content counters and runs the badge pass after
// sets or cards changed.
func settleContent(doc *progress.Document, now time.Time) []domain.Badge {
	doc.Stats = ledger.RefreshContentStats(doc.Stats, doc.Sets)

	var unlocked []domain.Badge
	counters := ledger.CountersFrom(doc.Stats, doc.Gamification)
	doc.Gamification.Badges, unlocked = ledger.UpdateBadges(doc.Gamification.Badges, counters, now)
	return unlocked
}

// CreateSet implements Service.CreateSet.
func (s *serviceImpl) CreateSet(ctx context.Context, input CreateSetInput) (domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateInput(input); err != nil {
		return domain.FlashcardSet{}, err
	}

	now := s.clock.Now()
	set, err := domain.NewFlashcardSet(input.Title, input.Description, input.Tags, now)
	if err != nil {
		return domain.FlashcardSet{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for _, ci := range input.Cards {
		card, err := newCard(ci, now)
		if err != nil {
			return domain.FlashcardSet{}, err
		}
		set.Cards = append(set.Cards, *card)
	}

	var unlocked []domain.Badge
	_, err = s.store.Mutate(ctx, func(doc *progress.Document) error {
		doc.Sets = append(doc.Sets, set.Clone())
		unlocked = settleContent(doc, now)
		return nil
	})
	if err != nil {
		log.Error("failed to create set", slog.String("error", err.Error()))
		return domain.FlashcardSet{}, fmt.Errorf("failed to create set: %w", err)
	}

	log.Info("created flashcard set",
		slog.String("set_id", set.ID.String()),
		slog.Int("cards", len(set.Cards)))

	s.emitBadges(ctx, unlocked, now)
	return *set, nil
}

// AddCard implements Service.AddCard.
func (s *serviceImpl) AddCard(ctx context.Context, setID uuid.UUID, input AddCardInput) (domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateInput(input); err != nil {
		return domain.Flashcard{}, err
	}

	now := s.clock.Now()
	card, err := newCard(input, now)
	if err != nil {
		return domain.Flashcard{}, err
	}

	var unlocked []domain.Badge
	_, err = s.store.Mutate(ctx, func(doc *progress.Document) error {
		set, err := findSet(doc, setID)
		if err != nil {
			return err
		}
		set.Cards = append(set.Cards, *card)
		set.UpdatedAt = now
		unlocked = settleContent(doc, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSetNotFound) {
			return domain.Flashcard{}, err
		}
		log.Error("failed to add card", slog.String("error", err.Error()))
		return domain.Flashcard{}, fmt.Errorf("failed to add card: %w", err)
	}

	log.Debug("added card",
		slog.String("set_id", setID.String()),
		slog.String("card_id", card.ID.String()))

	s.emitBadges(ctx, unlocked, now)
	return *card, nil
}

// DeleteSet implements Service.DeleteSet.
func (s *serviceImpl) DeleteSet(ctx context.Context, setID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	_, err := s.store.Mutate(ctx, func(doc *progress.Document) error {
		idx := doc.SetIndex(setID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrSetNotFound, setID)
		}
		doc.Sets = slices.Delete(doc.Sets, idx, idx+1)
		settleContent(doc, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSetNotFound) {
			return err
		}
		log.Error("failed to delete set", slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete set: %w", err)
	}

	log.Info("deleted flashcard set", slog.String("set_id", setID.String()))
	return nil
}

// ListSets implements Service.ListSets.
func (s *serviceImpl) ListSets(ctx context.Context) ([]domain.FlashcardSet, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Sets, nil
}

// GetSet implements Service.GetSet.
func (s *serviceImpl) GetSet(ctx context.Context, setID uuid.UUID) (domain.FlashcardSet, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return domain.FlashcardSet{}, err
	}
	set, err := findSet(&doc, setID)
	if err != nil {
		return domain.FlashcardSet{}, err
	}
	return *set, nil
}

// ReviewCard implements Service.ReviewCard.
func (s *serviceImpl) ReviewCard(ctx context.Context, setID uuid.UUID, review ReviewInput) (domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateInput(review); err != nil {
		return domain.Flashcard{}, err
	}

	now := s.clock.Now()
	var updated domain.Flashcard
	_, err := s.store.Mutate(ctx, func(doc *progress.Document) error {
		set, err := findSet(doc, setID)
		if err != nil {
			return err
		}
		card, err := applyReview(s.scheduler, set, review, now)
		if err != nil {
			return err
		}
		set.TotalReviews++
		set.UpdatedAt = now
		doc.Stats = ledger.RefreshContentStats(doc.Stats, doc.Sets)
		updated = card
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSetNotFound) || errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrInvalidInput) {
			return domain.Flashcard{}, err
		}
		log.Error("failed to review card",
			slog.String("error", err.Error()),
			slog.String("set_id", setID.String()),
			slog.String("card_id", review.CardID.String()))
		return domain.Flashcard{}, fmt.Errorf("failed to review card: %w", err)
	}

	log.Debug("reviewed card",
		slog.String("card_id", updated.ID.String()),
		slog.Int("mastery", updated.MasteryLevel),
		slog.Int("interval", updated.Interval))
	return updated, nil
}

// applyReview runs the scheduler on one card of set and stores the result.
func applyReview(
	scheduler srs.Scheduler,
	set *domain.FlashcardSet,
	review ReviewInput,
	now time.Time,
) (domain.Flashcard, error) {
	idx := set.CardIndex(review.CardID)
	if idx < 0 {
		return domain.Flashcard{}, fmt.Errorf("%w: %s", ErrCardNotFound, review.CardID)
	}

	next, err := scheduler.Review(set.Cards[idx], review.Outcome(), now)
	if err != nil {
		if errors.Is(err, srs.ErrInvalidQuality) {
			return domain.Flashcard{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return domain.Flashcard{}, err
	}

	set.Cards[idx] = next
	return next, nil
}

// DueCards implements Service.DueCards.
func (s *serviceImpl) DueCards(ctx context.Context, setID uuid.UUID) ([]DueCard, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sets := doc.Sets
	if setID != uuid.Nil {
		set, err := findSet(&doc, setID)
		if err != nil {
			return nil, err
		}
		sets = []domain.FlashcardSet{*set}
	}

	now := s.clock.Now()
	due := []DueCard{}
	for _, set := range sets {
		for _, card := range srs.DueCards(s.scheduler, set.Cards, now) {
			due = append(due, DueCard{SetID: set.ID, SetTitle: set.Title, Card: card})
		}
	}
	return due, nil
}

// Sessions implements Service.Sessions.
func (s *serviceImpl) Sessions(ctx context.Context, limit int) ([]domain.StudySession, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(doc.Sessions) {
		return doc.Sessions[:limit], nil
	}
	return doc.Sessions, nil
}

// Stats implements Service.Stats.
func (s *serviceImpl) Stats(ctx context.Context) (domain.FlashcardStats, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return domain.FlashcardStats{}, err
	}
	return doc.Stats, nil
}

// Gamification implements Service.Gamification.
func (s *serviceImpl) Gamification(ctx context.Context) (domain.UserGamificationStats, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return domain.UserGamificationStats{}, err
	}
	return doc.Gamification, nil
}
