package store

import "context"

// KVStore reads and writes serialized documents by key.
//
// Get returns ErrNotFound (possibly wrapped) when the key has never been set.
// Set overwrites any previous value for the key in full. SetMany writes all
// entries; SQL-backed stores do so in one transaction.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
}
