package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Job errors
var (
	// ErrJobNotFound is returned when no job matches the given identifier.
	// A caller-visible not-found condition, distinct from any server fault.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyClaimed is returned when the queued→processing transition
	// finds the job already claimed by another worker.
	ErrJobAlreadyClaimed = errors.New("job is already claimed")

	// ErrJobTerminal is returned when a status update targets a job that has
	// already reached completed or failed.
	ErrJobTerminal = errors.New("job is in a terminal state")
)

// Fetch errors
var (
	// ErrFetchTimeout is returned when the external harvester exceeds its
	// hard timeout. Recovered at the group level, never fatal to the job.
	ErrFetchTimeout = errors.New("harvester fetch timed out")

	// ErrFetchFailed is returned when the harvester exits non-zero or its
	// output cannot be read.
	ErrFetchFailed = errors.New("harvester fetch failed")
)

// Cache errors
var (
	// ErrCacheMiss is returned when no cached block exists for a key.
	ErrCacheMiss = errors.New("league data not cached")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// IsNotFound returns true when err (or any error in its chain) is a domain
// "not found" error. Use this instead of comparing error values directly when
// translating domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound)
}

// IsFetchError returns true for harvester failures that should be recovered
// at the group level rather than failing the whole job.
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetchTimeout) || errors.Is(err, ErrFetchFailed)
}
