package domain

import "fmt"

// Status is the lifecycle state of a document (and, mirrored, its task).
// The vocabulary is fixed; any transport binding must preserve it verbatim.
type Status string

const (
	// StatusUnknown means no record exists. It is derived from the absence
	// of a row and is never persisted.
	StatusUnknown Status = "UNKNOWN"
	// StatusPending means the document is queued and claimable.
	StatusPending Status = "PENDING"
	// StatusStarted means a worker has claimed the document.
	StatusStarted Status = "STARTED"
	// StatusDone means processing succeeded and the blob holds the result.
	StatusDone Status = "DONE"
	// StatusError means processing failed and the blob holds the error text.
	StatusError Status = "ERROR"
)

// Statuses lists every status in the vocabulary, UNKNOWN included.
var Statuses = []Status{StatusUnknown, StatusPending, StatusStarted, StatusDone, StatusError}

// Valid reports whether s is part of the status vocabulary.
func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusPending, StatusStarted, StatusDone, StatusError:
		return true
	}
	return false
}

// Terminal reports whether s is an end state of the machine.
// Terminal states are only re-enterable through the explicit reset edges.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return StatusUnknown, fmt.Errorf("%w: status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

// transitions is the single source of truth for status edges.
// UNKNOWN→PENDING is the create path, PENDING→STARTED the claim,
// STARTED→{DONE,ERROR} the worker report. Storing a result or error is
// re-allowed from DONE and ERROR so reports can be overwritten in place.
// ERROR→PENDING and STARTED→PENDING exist only for the explicit reset flags.
var transitions = map[Status][]Status{
	StatusUnknown: {StatusPending},
	StatusPending: {StatusStarted},
	StatusStarted: {StatusDone, StatusError, StatusPending},
	StatusDone:    {StatusDone, StatusError},
	StatusError:   {StatusDone, StatusError, StatusPending},
}

// CanTransition reports whether the state machine permits moving a
// document from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
