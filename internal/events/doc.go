// Package events carries notable learning milestones (badge unlocks, level
// ups, completed daily goals, recorded sessions) from the study service to
// whoever wants to react to them.
//
// Services emit events after their state change has been committed, so a
// handler never observes a milestone that was rolled back. Handlers must not
// call back into the emitting service synchronously.
package events
