// Package config loads studyquest settings from defaults, an optional
// studyquest.yaml file and STUDYQUEST_* environment variables, in increasing
// order of precedence, and validates the result before any component uses it.
package config
