// Package domain contains the learning entities shared by the scheduler, the
// gamification ledger and the persistence layer: flashcards and their sets,
// study sessions, badges, the ledger's counters and the hearts resource.
// It has no knowledge of storage or transport.
package domain
