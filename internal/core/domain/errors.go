package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Stores return it from the create path so concurrent duplicate
	// submissions converge on the row that won.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates an operation was attempted from a
	// status that does not permit it, e.g. completing a PENDING document.
	// These are protocol errors and propagate immediately.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotReady indicates a result was requested before the document
	// reached DONE.
	ErrNotReady = errors.New("result not ready")

	// ErrFailed indicates a result was requested for a document in ERROR.
	// It is always wrapped together with the stored error text.
	ErrFailed = errors.New("processing failed")

	// ErrUnknownTool indicates the tool name is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrStoreUnavailable indicates the lifecycle store or blob store
	// is unreachable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnsupportedFormat indicates a tool cannot convert its result
	// to the requested format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
