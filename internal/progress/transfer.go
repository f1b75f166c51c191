package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studyquest/internal/domain"
)

// ErrInvalidImport is wrapped by every Import failure caused by the input.
var ErrInvalidImport = errors.New("invalid import data")

// ExportVersion identifies the envelope format.
const ExportVersion = 1

// ExportEnvelope is the portable backup of profile and progress. The API
// key in Profile stays obfuscated.
type ExportEnvelope struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Profile    *domain.Preferences `json:"profile"`
	Progress   *Document           `json:"progress"`
}

type importEnvelope struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Profile    *domain.Preferences `json:"profile" validate:"required"`
	Progress   json.RawMessage     `json:"progress" validate:"required"`
}

var importValidator = validator.New()

// Export returns the current profile and progress as indented JSON.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := s.Preferences(ctx)
	if err != nil {
		return nil, err
	}
	prefs.APIKey = Obfuscate(prefs.APIKey)

	env := ExportEnvelope{
		Version:    ExportVersion,
		ExportedAt: s.clock.Now(),
		Profile:    &prefs,
		Progress:   &doc,
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return out, nil
}

// Import replaces profile and progress with the contents of an export.
// Missing progress fields take their defaults and badges are merged onto the
// catalogue. On any failure the current state is left as it was.
func (s *Store) Import(ctx context.Context, data []byte) error {
	var env importEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	if err := importValidator.Struct(env); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}

	doc, err := decodeDocument(env.Progress, s.Defaults())
	if err != nil {
		return fmt.Errorf("%w: progress: %w", ErrInvalidImport, err)
	}

	prefs := normalizePreferences(*env.Profile)
	prefs.APIKey = Deobfuscate(prefs.APIKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	doc = applyDayRollover(doc, now)
	doc.Version = CurrentVersion
	doc.UpdatedAt = now

	rawDoc, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	rawPrefs, err := encodePreferences(prefs)
	if err != nil {
		return err
	}

	if err := s.kv.SetMany(ctx, map[string][]byte{
		StorageKey:     rawDoc,
		PreferencesKey: rawPrefs,
	}); err != nil {
		return fmt.Errorf("failed to save imported data: %w", err)
	}

	s.doc = doc
	s.loaded = true

	s.logger.Info("imported progress",
		slog.Int("sets", len(doc.Sets)),
		slog.Int("sessions", len(doc.Sessions)),
		slog.Time("exported_at", env.ExportedAt))
	return nil
}
