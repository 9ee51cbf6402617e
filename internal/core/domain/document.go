package domain

import "time"

// Task is a logical processing request for one tool.
// Its status mirrors the owned document's status. Tasks are modelled as a
// separate entity so a task can own many documents in a later design, but
// the relation is 1:1 today. Tasks are never deleted.
type Task struct {
	// ID is the opaque, server-assigned unique identifier.
	ID string

	// Tool names the processing tool this task targets.
	Tool string

	// Status mirrors the document's status.
	Status Status

	// CreatedAt is set once at creation.
	CreatedAt time.Time
}

// Document is the content-addressed unit of work undergoing processing
// for a specific tool.
//
// The blob store entry keyed by (Tool, DocID) must always agree with
// Status: PENDING/STARTED means the blob holds the submitted content,
// DONE the tool's result, ERROR an error description.
type Document struct {
	// DocID is the content address, a deterministic hash of (tool, content).
	// It is the dedup key and is immutable once assigned; re-processing
	// overwrites the blob in place but never changes the key.
	DocID string

	// TaskID references the owning task.
	TaskID string

	// Tool names the processing tool.
	Tool string

	// Path is an opaque locator into the blob store. It is not
	// guaranteed stable across moves.
	Path string

	// Status is the current lifecycle state.
	Status Status

	// CreatedAt is when the document was first submitted.
	CreatedAt time.Time

	// UpdatedAt is when the status last changed.
	UpdatedAt time.Time
}
