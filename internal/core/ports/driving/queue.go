package driving

import (
	"context"

	"github.com/docflow-io/docflow/internal/core/domain"
)

// SubmitOptions modifies Submit behaviour.
type SubmitOptions struct {
	// DocID is an explicit, pre-computed document id. When empty the id
	// is derived from (tool, content).
	DocID string

	// ResetError re-queues a document currently in ERROR.
	ResetError bool

	// ResetPending re-queues a document currently stuck in STARTED.
	ResetPending bool
}

// Claimed is one unit of work handed to a worker.
type Claimed struct {
	// DocID identifies the claimed document.
	DocID string

	// Content is the submitted text to process.
	Content string
}

// BulkResultItem is the per-document outcome of a bulk result fetch.
// Exactly one of Result and Err is meaningful.
type BulkResultItem struct {
	Result string `json:"result,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Queue is the task/document lifecycle API: producers submit documents,
// workers claim them and report outcomes, and everyone polls status.
//
// All status transitions funnel through this interface; it is the only
// place where the state machine is enforced.
type Queue interface {
	// Submit queues content for processing by tool and returns the ids of
	// the owning task and the document. Resubmitting identical content
	// under the same tool is an idempotent no-op unless a reset flag
	// matches the document's current status. The reset path retains the
	// existing blob; callers needing different content under the same id
	// must submit a new explicit id.
	Submit(ctx context.Context, tool, content string, opts SubmitOptions) (taskID, docID string, err error)

	// Claim hands one PENDING document to the caller, flipping it to
	// STARTED. At most one concurrent caller wins a given document.
	// An empty queue returns (nil, nil); it is not an error.
	Claim(ctx context.Context, tool string) (*Claimed, error)

	// Complete records a successful result for a claimed document and
	// flips it to DONE. Returns domain.ErrInvalidTransition if the
	// document was never claimed (PENDING or UNKNOWN).
	Complete(ctx context.Context, tool, docID, result string) error

	// Fail records an error description for a claimed document and flips
	// it to ERROR. Same precondition as Complete.
	Fail(ctx context.Context, tool, docID, errText string) error

	// Status reports the current status of a document. A document that
	// was never submitted is StatusUnknown; no error is returned for it.
	Status(ctx context.Context, tool, docID string) (domain.Status, error)

	// Result returns the stored result of a DONE document, converted via
	// the tool when format is non-empty. Returns domain.ErrNotReady
	// before DONE and domain.ErrFailed (wrapping the stored error text)
	// for a document in ERROR.
	Result(ctx context.Context, tool, docID, format string) (string, error)

	// Statistics returns per-status document counts for a tool.
	Statistics(ctx context.Context, tool string) (map[domain.Status]int, error)

	// BulkSubmit submits many documents independently. ids, when given,
	// must be the same length as contents and supplies explicit ids.
	// The returned slice holds a doc id per input; one input's failure
	// does not abort the rest.
	BulkSubmit(ctx context.Context, tool string, contents, ids []string, opts SubmitOptions) ([]string, error)

	// BulkStatus reports the status of many documents independently.
	BulkStatus(ctx context.Context, tool string, ids []string) (map[string]domain.Status, error)

	// BulkResult fetches many results independently, marking per-item
	// failures instead of aborting the batch.
	BulkResult(ctx context.Context, tool string, ids []string, format string) (map[string]BulkResultItem, error)
}
