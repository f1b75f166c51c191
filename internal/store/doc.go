// Package store defines the persistence contract used by the progress engine.
// The engine only ever reads and writes whole serialized blobs by key, so
// backends (memory, file, SQLite, PostgreSQL) implement the small KVStore
// interface and nothing else. Helpers for SQL-backed implementations live
// here as well.
package store
