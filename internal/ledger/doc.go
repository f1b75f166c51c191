// Package ledger implements the gamification rules: the level curve, session
// XP, streak transitions, badge progress and unlocks, the daily goal and the
// weekly XP histogram.
//
// Every function is pure. Callers pass in copies of the counters held by the
// progress store together with the current time and get updated copies back;
// nothing here reads a clock or touches storage.
package ledger
