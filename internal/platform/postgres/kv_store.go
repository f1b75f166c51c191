package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/studyquest/internal/store"
)

const (
	getQuery    = `SELECT value FROM progress_kv WHERE key = $1`
	upsertQuery = `INSERT INTO progress_kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteQuery = `DELETE FROM progress_kv WHERE key = $1`
)

// Open connects to databaseURL using the pgx stdlib driver and verifies the
// connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// KVStore implements store.KVStore on the progress_kv table.
type KVStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.KVStore = (*KVStore)(nil)

// NewKVStore creates a KVStore. The table must already exist; see Migrate.
func NewKVStore(db *sql.DB, logger *slog.Logger) *KVStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_kv_store")),
	}
}

// Close closes the underlying database.
func (s *KVStore) Close() error {
	return s.db.Close()
}

// Get implements store.KVStore.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	if err := s.db.QueryRowContext(ctx, getQuery, key).Scan(&value); err != nil {
		mapped := MapError(err)
		if !store.IsNotFoundError(mapped) {
			s.logger.Error("failed to read key", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, store.NewStoreError("postgres", "get", "query failed", mapped)
	}
	return value, nil
}

// Set implements store.KVStore.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if err := upsert(ctx, s.db, key, value); err != nil {
		return store.NewStoreError("postgres", "set", "upsert failed", MapError(err))
	}
	return nil
}

// SetMany implements store.KVStore in a single transaction.
func (s *KVStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	for key := range entries {
		if err := store.ValidateKey(key); err != nil {
			return err
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for key, value := range entries {
			if err := upsert(ctx, tx, key, value); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return store.NewStoreError("postgres", "set_many", "transaction failed", err)
	}
	return nil
}

// Delete implements store.KVStore. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return store.NewStoreError("postgres", "delete", "delete failed", MapError(err))
	}
	return nil
}

func upsert(ctx context.Context, db store.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx, upsertQuery, key, value)
	return err
}
