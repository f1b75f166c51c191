package progress

import (
	"context"
	"testing"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObfuscate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "ascii", input: "abc", expected: "Y2Jh"},
		{name: "api key", input: "sk-test-123", expected: "MzIxLXRzZXQta3M="},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Obfuscate(tc.input)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.input, Deobfuscate(got))
		})
	}
}

func TestObfuscateMultibyteRoundTrip(t *testing.T) {
	t.Parallel()
	in := "clé-日本語-🔑"
	assert.Equal(t, in, Deobfuscate(Obfuscate(in)))
}

func TestDeobfuscatePlaintextPassesThrough(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "sk-live_!", Deobfuscate("sk-live_!"))
}

func TestDeobfuscateBase64ShapedPlaintextPassesThrough(t *testing.T) {
	t.Parallel()
	// Valid base64 whose decoding is not UTF-8.
	assert.Equal(t, "abcd1234", Deobfuscate("abcd1234"))
	assert.Equal(t, "AAAAAAAA", Deobfuscate("AAAAAAAA"))
}

func TestPreferencesRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _, kv := newTestStore(t)

	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), prefs)

	prefs.DisplayName = "Ada"
	prefs.APIKey = "sk-secret-value"
	prefs.CustomFields["school"] = "Analytical"
	require.NoError(t, s.SavePreferences(ctx, prefs))

	raw, err := kv.Get(ctx, PreferencesKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret-value")
	assert.Contains(t, string(raw), Obfuscate("sk-secret-value"))

	got, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-value", got.APIKey)
	assert.Equal(t, "Ada", got.DisplayName)
	assert.Equal(t, "Analytical", got.CustomFields["school"])
	assert.NotNil(t, got.Notes)
}

func TestPreferencesCorruptBlobUsesDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _, kv := newTestStore(t)
	require.NoError(t, kv.Set(ctx, PreferencesKey, []byte("not json")))

	got, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), got)
}

func TestSavePreferencesNormalizesNilCollections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	require.NoError(t, s.SavePreferences(ctx, domain.Preferences{Theme: "dark"}))
	got, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.NotNil(t, got.Memos)
	assert.NotNil(t, got.CustomFields)
}
