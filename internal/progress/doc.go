// Package progress is the persistent store of the learning engine. It owns
// the progress document (sets, session log, aggregate stats and the
// gamification ledger), loads it with default backfilling and legacy
// migration, and writes it back whole on every change.
//
// The user's preferences blob is stored under its own key and travels with
// the document through export and import.
package progress
