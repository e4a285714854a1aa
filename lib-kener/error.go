package kener

import (
	"errors"
)

// The errors of this library can be checked via the errors.Is function.
var (
	// ErrValidation is an error for a malformed or out-of-range
	// ingestion payload. Surfaced as HTTP 400.
	ErrValidation = errors.New("validation error")

	// ErrAuth is an error for a bad bearer token or a disallowed
	// source address. Surfaced as HTTP 401.
	ErrAuth = errors.New("authorization error")

	// ErrNotFound is an error for an unknown monitor tag or incident.
	ErrNotFound = errors.New("not found")

	// ErrUpstream is an error for a failed or malformed issue-tracker
	// response. Callers log it and degrade to an empty incident set.
	ErrUpstream = errors.New("upstream error")

	// ErrStorage is an error for a missing or corrupt event-log or
	// rollup file.
	ErrStorage = errors.New("storage error")
)
