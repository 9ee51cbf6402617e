package driven

import (
	"context"

	"github.com/docflow-io/docflow/internal/core/domain"
)

// LifecycleStore persists tasks and documents and guards their status
// transitions. It is the single source of truth for state.
//
// Implementations must make every conditional operation atomic: two
// concurrent callers of ClaimPending never receive the same document, and
// UpdateDocumentStatus flips a row only while its status is still in the
// allowed from-set. A plain read followed by an unconditional write is not
// an acceptable implementation.
type LifecycleStore interface {
	// CreateTaskAndDocument inserts a task and its document atomically.
	// Returns domain.ErrAlreadyExists if a document with the same id is
	// already present, in which case neither row is inserted. The unique
	// constraint on the document id is what serialises concurrent creates.
	CreateTaskAndDocument(ctx context.Context, task *domain.Task, doc *domain.Document) error

	// GetTask retrieves a task by id.
	// Returns domain.ErrNotFound if no such task exists.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// SetTaskStatus updates a task's mirrored status.
	SetTaskStatus(ctx context.Context, taskID string, status domain.Status) error

	// GetDocument retrieves a document by id.
	// Returns domain.ErrNotFound if no such document exists.
	GetDocument(ctx context.Context, docID string) (*domain.Document, error)

	// UpdateDocumentStatus conditionally flips a document's status. The
	// update applies only if the current status is one of from; the bool
	// reports whether a row changed. A missing row is (false, nil).
	UpdateDocumentStatus(ctx context.Context, docID string, from []domain.Status, to domain.Status) (bool, error)

	// ClaimPending atomically selects one PENDING document for the tool
	// and flips it to STARTED. Selection among candidates is arbitrary;
	// no FIFO or priority order is promised. Returns domain.ErrNotFound
	// when no PENDING document exists.
	ClaimPending(ctx context.Context, tool string) (*domain.Document, error)

	// CountByStatus returns the number of documents per status for a tool.
	// Statuses with no documents are omitted.
	CountByStatus(ctx context.Context, tool string) (map[domain.Status]int, error)
}
