package progress

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/store"
)

// Obfuscate hides s from casual inspection of the stored blob. It is a
// reversible encoding, not encryption.
func Obfuscate(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	slices.Reverse(runes)
	return base64.StdEncoding.EncodeToString([]byte(string(runes)))
}

// Deobfuscate reverses Obfuscate. Values that do not decode to printable
// UTF-8 text are returned unchanged, which keeps plaintext keys from older
// saves readable. A plaintext key whose base64 decoding happens to be
// printable text cannot be told apart and is decoded.
func Deobfuscate(s string) string {
	if s == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil || !printableText(raw) {
		return s
	}
	runes := []rune(string(raw))
	slices.Reverse(runes)
	return string(runes)
}

func printableText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// DefaultPreferences returns an empty profile.
func DefaultPreferences() domain.Preferences {
	return domain.Preferences{
		Notes:        []domain.Note{},
		Memos:        []string{},
		CustomFields: map[string]string{},
	}
}

func normalizePreferences(p domain.Preferences) domain.Preferences {
	if p.Notes == nil {
		p.Notes = []domain.Note{}
	}
	if p.Memos == nil {
		p.Memos = []string{}
	}
	if p.CustomFields == nil {
		p.CustomFields = map[string]string{}
	}
	return p
}

func encodePreferences(p domain.Preferences) ([]byte, error) {
	p.APIKey = Obfuscate(p.APIKey)
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return raw, nil
}

// Preferences loads the saved profile. A missing or unreadable blob yields
// the defaults.
func (s *Store) Preferences(ctx context.Context) (domain.Preferences, error) {
	raw, err := s.kv.Get(ctx, PreferencesKey)
	if store.IsNotFoundError(err) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal(raw, &prefs); err != nil {
		s.logger.Warn("saved preferences are unreadable, using defaults",
			slog.String("error", err.Error()))
		return DefaultPreferences(), nil
	}

	prefs.APIKey = Deobfuscate(prefs.APIKey)
	return normalizePreferences(prefs), nil
}

// SavePreferences stores prefs, obfuscating the API key.
func (s *Store) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	raw, err := encodePreferences(normalizePreferences(prefs))
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, PreferencesKey, raw); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
