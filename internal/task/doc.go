// Package task runs background jobs on a small worker pool so that slow
// work, such as writing backup snapshots, never blocks request handling.
package task
