// Package api is the local HTTP surface of the learning engine. It decodes
// and validates requests, calls the study service, the progress store and
// the hearts pool, and maps their errors to status codes without leaking
// internal details.
package api
