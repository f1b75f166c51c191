// Package filestore is a store.KVStore keeping one JSON file per key in a
// directory. Writes go to a temporary file that is renamed over the target,
// so a crash mid-write leaves the previous value intact.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	"github.com/phrazzld/studyquest/internal/store"
	"github.com/spf13/afero"
)

const fileExt = ".json"

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store is a directory-backed key-value store.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

var _ store.KVStore = (*Store)(nil)

// New creates the directory if needed and returns a Store rooted at dir.
// Tests pass afero.NewMemMapFs(); production code passes afero.NewOsFs().
func New(fsys afero.Fs, dir string, logger *slog.Logger) (*Store, error) {
	if fsys == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if exists, _ := afero.DirExists(fsys, dir); !exists {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, store.NewStoreError("file", "open", "failed to create directory", err)
		}
	}

	return &Store{
		fs:     fsys,
		dir:    dir,
		logger: logger.With(slog.String("component", "file_store")),
	}, nil
}

func (s *Store) path(key string) (string, error) {
	if err := store.ValidateKey(key); err != nil {
		return "", err
	}
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

// Get implements store.KVStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	if err != nil {
		return nil, store.NewStoreError("file", "get", "failed to read "+key, err)
	}
	return data, nil
}

// Set implements store.KVStore.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeAtomic(key, path, value)
}

// SetMany implements store.KVStore. Every value is written to a temp file
// before any target is replaced, so a failed write leaves all keys
// unchanged. Only a rename failure part-way through the final step can leave
// the batch partly applied.
func (s *Store) SetMany(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keys := slices.Sorted(maps.Keys(entries))
	paths := make(map[string]string, len(entries))
	for _, key := range keys {
		path, err := s.path(key)
		if err != nil {
			return err
		}
		paths[key] = path
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]string, len(keys))
	for _, key := range keys {
		tmpName, err := s.stage(key, entries[key])
		if err != nil {
			for _, name := range staged {
				s.removeTemp(name)
			}
			return err
		}
		staged[key] = tmpName
	}

	for i, key := range keys {
		if err := s.fs.Rename(staged[key], paths[key]); err != nil {
			for _, rest := range keys[i:] {
				s.removeTemp(staged[rest])
			}
			return store.NewStoreError("file", "set_many", "failed to replace "+key, err)
		}
	}

	s.logger.Debug("wrote keys", slog.Any("keys", keys))
	return nil
}

// Delete implements store.KVStore. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return store.NewStoreError("file", "delete", "failed to remove "+key, err)
	}
	return nil
}

func (s *Store) writeAtomic(key, path string, value []byte) error {
	tmpName, err := s.stage(key, value)
	if err != nil {
		return err
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		s.removeTemp(tmpName)
		return store.NewStoreError("file", "set", "failed to replace "+key, err)
	}

	s.logger.Debug("wrote key", slog.String("key", key), slog.Int("bytes", len(value)))
	return nil
}

// stage writes value to a synced temp file next to the target and returns
// its name.
func (s *Store) stage(key string, value []byte) (string, error) {
	tmp, err := afero.TempFile(s.fs, s.dir, "."+key+".tmp-*")
	if err != nil {
		return "", store.NewStoreError("file", "set", "failed to create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		s.removeTemp(tmpName)
		return "", store.NewStoreError("file", "set", "failed to write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		s.removeTemp(tmpName)
		return "", store.NewStoreError("file", "set", "failed to sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		s.removeTemp(tmpName)
		return "", store.NewStoreError("file", "set", "failed to close temp file", err)
	}
	return tmpName, nil
}

func (s *Store) removeTemp(name string) {
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to remove temp file",
			slog.String("path", name),
			slog.String("error", err.Error()))
	}
}
