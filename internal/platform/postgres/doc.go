// Package postgres provides a PostgreSQL implementation of store.KVStore for
// running the local API against a shared database, plus the embedded goose
// migrations that create its table.
package postgres
