// Package study is the application service for flashcard sets and study
// sessions. It applies the active scheduling strategy to reviewed cards,
// turns completed sessions into XP, streak, goal and badge updates, and
// commits every change through the progress store as one write.
package study
