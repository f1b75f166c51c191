package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/phrazzld/studyquest/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "studyquest.db")
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestGetSetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openTestStore(t)

	_, err := s.Get(ctx, "flashcard-progress")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, "flashcard-progress", []byte(`{"version":1}`)))
	require.NoError(t, s.Set(ctx, "flashcard-progress", []byte(`{"version":2}`)))

	got, err := s.Get(ctx, "flashcard-progress")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "flashcard-progress"))
	_, err = s.Get(ctx, "flashcard-progress")
	assert.True(t, store.IsNotFoundError(err))
}

func TestEmptyValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.Set(ctx, "empty", nil))
	got, err := s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetMany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.SetMany(ctx, map[string][]byte{
		"progress":    []byte("p"),
		"preferences": []byte("q"),
	}))

	for key, want := range map[string]string{"progress": "p", "preferences": "q"} {
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}

	assert.ErrorIs(t, s.SetMany(ctx, map[string][]byte{"": []byte("x")}), store.ErrInvalidKey)
}

func TestDataSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, path := openTestStore(t)

	require.NoError(t, s.Set(ctx, "hearts", []byte(`{"hearts":3}`)))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, "hearts")
	require.NoError(t, err)
	assert.JSONEq(t, `{"hearts":3}`, string(got))
}

func TestConcurrentWriters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openTestStore(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, "counter", []byte{byte(i)}))
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
