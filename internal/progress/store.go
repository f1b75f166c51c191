package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/ledger"
	"github.com/phrazzld/studyquest/internal/platform/clock"
	"github.com/phrazzld/studyquest/internal/store"
)

// Load sources, reported in logs.
const (
	sourceCurrent  = "current"
	sourceLegacy   = "legacy"
	sourceDefaults = "defaults"
)

// Option configures a Store.
type Option func(*Store)

// WithDailyGoal sets the daily targets used for fresh and reset documents.
func WithDailyGoal(goal domain.DailyGoal) Option {
	return func(s *Store) {
		s.goal = goal
	}
}

// Store owns the progress document. All access goes through its methods,
// which serialize on an internal mutex; the document is loaded lazily on
// first use.
type Store struct {
	kv     store.KVStore
	clock  clock.Clock
	logger *slog.Logger
	goal   domain.DailyGoal

	mu     sync.RWMutex
	doc    Document
	loaded bool
}

// NewStore creates a Store over kv.
func NewStore(kv store.KVStore, clk clock.Clock, logger *slog.Logger, opts ...Option) *Store {
	if kv == nil {
		panic("kv store cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		kv:     kv,
		clock:  clk,
		logger: logger.With(slog.String("component", "progress_store")),
		goal:   ledger.DefaultDailyGoal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns a fresh default document for this store's settings.
func (s *Store) Defaults() Document {
	return DefaultDocument(s.goal)
}

// Load reads the document from storage, replacing whatever is in memory.
//
// A missing or unparseable current document falls back to migrating the
// legacy key, and then to defaults; these fallbacks are logged, not
// returned. Only storage I/O failures are errors. A successful legacy
// migration is written back immediately under the current key.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	now := s.clock.Now()
	defaults := s.Defaults()

	doc, source, err := s.readCurrent(ctx, defaults)
	if err != nil {
		return err
	}

	if source == "" {
		doc, source, err = s.readLegacy(ctx, defaults)
		if err != nil {
			return err
		}
	}

	if source == "" {
		doc, source = defaults, sourceDefaults
	}

	doc = applyDayRollover(doc, now)

	if source == sourceLegacy {
		if err := s.write(ctx, &doc); err != nil {
			return fmt.Errorf("failed to persist migrated progress: %w", err)
		}
	}

	s.doc = doc
	s.loaded = true

	s.logger.Info("progress loaded",
		slog.String("source", source),
		slog.Int("sets", len(doc.Sets)),
		slog.Int("total_xp", doc.Gamification.TotalXP))

	return nil
}

func (s *Store) readCurrent(ctx context.Context, defaults Document) (Document, string, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if store.IsNotFoundError(err) {
		return Document{}, "", nil
	}
	if err != nil {
		return Document{}, "", fmt.Errorf("failed to read progress: %w", err)
	}

	doc, err := decodeDocument(raw, defaults)
	if err != nil {
		s.logger.Warn("saved progress is unreadable, falling back",
			slog.String("key", StorageKey),
			slog.String("error", err.Error()))
		return Document{}, "", nil
	}
	return doc, sourceCurrent, nil
}

func (s *Store) readLegacy(ctx context.Context, defaults Document) (Document, string, error) {
	raw, err := s.kv.Get(ctx, LegacyStorageKey)
	if store.IsNotFoundError(err) {
		return Document{}, "", nil
	}
	if err != nil {
		return Document{}, "", fmt.Errorf("failed to read legacy progress: %w", err)
	}

	doc, err := migrateLegacy(raw, defaults, s.clock.Now())
	if err != nil {
		s.logger.Warn("legacy progress could not be migrated, using defaults",
			slog.String("key", LegacyStorageKey),
			slog.String("error", err.Error()))
		return Document{}, "", nil
	}

	s.logger.Info("migrated legacy progress",
		slog.Int("sets", len(doc.Sets)),
		slog.Int("sessions", len(doc.Sessions)))
	return doc, sourceLegacy, nil
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

// Snapshot returns a deep copy of the current document as of the clock's
// current day: idle streaks, the daily goal and today's study time are
// recomputed on the copy. Nothing is written.
func (s *Store) Snapshot(ctx context.Context) (Document, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return applyDayRollover(s.doc.Clone(), s.clock.Now()), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Document{}, err
	}
	return applyDayRollover(s.doc.Clone(), s.clock.Now()), nil
}

// Save writes the in-memory document to storage.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	doc := s.doc.Clone()
	if err := s.write(ctx, &doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Mutate applies fn to a copy of the document and saves the result as one
// logical transaction. If fn or the write fails, the in-memory document is
// unchanged and the error is returned. The committed document is returned.
func (s *Store) Mutate(ctx context.Context, fn func(doc *Document) error) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Document{}, err
	}

	work := applyDayRollover(s.doc.Clone(), s.clock.Now())
	if err := fn(&work); err != nil {
		return Document{}, err
	}

	if err := s.write(ctx, &work); err != nil {
		return Document{}, err
	}

	s.doc = work
	return work.Clone(), nil
}

// Reset replaces the document with defaults and persists it. Preferences are
// kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.Defaults()
	doc = applyDayRollover(doc, s.clock.Now())
	if err := s.write(ctx, &doc); err != nil {
		return err
	}

	s.doc = doc
	s.loaded = true
	s.logger.Info("progress reset")
	return nil
}

// write stamps UpdatedAt and stores doc. doc is only modified when the
// write succeeds.
func (s *Store) write(ctx context.Context, doc *Document) error {
	stamped := *doc
	stamped.UpdatedAt = s.clock.Now()
	stamped.Version = CurrentVersion

	raw, err := encodeDocument(stamped)
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.logger.Error("failed to save progress", slog.String("error", err.Error()))
		return fmt.Errorf("failed to save progress: %w", err)
	}

	*doc = stamped
	return nil
}

// ErrEncode wraps document serialization failures.
var ErrEncode = errors.New("failed to encode progress document")

func encodeDocument(doc Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return raw, nil
}
