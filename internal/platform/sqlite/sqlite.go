// Package sqlite is the on-device store.KVStore: a single key/blob table in
// a SQLite database file, using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/phrazzld/studyquest/internal/store"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

const (
	getQuery    = `SELECT value FROM kv WHERE key = ?`
	upsertQuery = `INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteQuery = `DELETE FROM kv WHERE key = ?`
)

// Store is a SQLite-backed key-value store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ store.KVStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, store.NewStoreError("sqlite", "open", "failed to create directory", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, store.NewStoreError("sqlite", "open", "failed to open database", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between
	// our own goroutines.
	db.SetMaxOpenConns(1)

	s := New(db, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database. The schema is not created.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_store")),
		now:    time.Now,
	}
}

// EnsureSchema creates the kv table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return store.NewStoreError("sqlite", "migrate", "failed to ensure schema", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements store.KVStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	if err != nil {
		s.logger.Error("failed to read key", slog.String("key", key), slog.String("error", err.Error()))
		return nil, store.NewStoreError("sqlite", "get", "query failed", err)
	}
	return value, nil
}

// Set implements store.KVStore.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if err := s.upsert(ctx, s.db, key, value); err != nil {
		return store.NewStoreError("sqlite", "set", "upsert failed", err)
	}
	return nil
}

// SetMany implements store.KVStore in a single transaction.
func (s *Store) SetMany(ctx context.Context, entries map[string][]byte) error {
	for key := range entries {
		if err := store.ValidateKey(key); err != nil {
			return err
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for key, value := range entries {
			if err := s.upsert(ctx, tx, key, value); err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return store.NewStoreError("sqlite", "set_many", "transaction failed", err)
	}
	return nil
}

// Delete implements store.KVStore. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return store.NewStoreError("sqlite", "delete", "delete failed", err)
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, db store.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx, upsertQuery, key, value, s.now().UTC().Format(time.RFC3339Nano))
	return err
}
