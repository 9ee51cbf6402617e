package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
	"github.com/docflow-io/docflow/internal/logger"
)

// Ensure QueueService implements the interface.
var _ driving.Queue = (*QueueService)(nil)

// QueueService is the queue manager: it enforces the document state
// machine on top of the lifecycle store and the blob store.
//
// All state-changing operations are expressed as conditional updates
// against the lifecycle store, so concurrent producers and workers can
// share one service (or one database) safely.
type QueueService struct {
	lifecycle driven.LifecycleStore
	blobs     driven.BlobStore
	registry  driving.ToolRegistry
}

// NewQueueService creates a queue service. The registry is only consulted
// for result conversion and may be nil when no conversion is needed.
func NewQueueService(
	lifecycle driven.LifecycleStore,
	blobs driven.BlobStore,
	registry driving.ToolRegistry,
) *QueueService {
	return &QueueService{
		lifecycle: lifecycle,
		blobs:     blobs,
		registry:  registry,
	}
}

// Submit queues content for processing by tool.
//
// Concurrent submits for the same (tool, content) converge on a single
// task/document pair: the create path is serialised by the document id's
// unique constraint, and a loser falls through to the existing-row branch.
func (s *QueueService) Submit(
	ctx context.Context,
	tool, content string,
	opts driving.SubmitOptions,
) (string, string, error) {
	if tool == "" {
		return "", "", fmt.Errorf("%w: tool is empty", domain.ErrInvalidInput)
	}

	docID := opts.DocID
	if docID == "" {
		docID = domain.Identity(tool, content)
	}

	doc, err := s.lifecycle.GetDocument(ctx, docID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		taskID, createErr := s.create(ctx, tool, docID, content)
		if createErr == nil {
			return taskID, docID, nil
		}
		if !errors.Is(createErr, domain.ErrAlreadyExists) {
			return "", "", createErr
		}
		// Lost the create race; converge on the winner's row.
		doc, err = s.lifecycle.GetDocument(ctx, docID)
		if err != nil {
			return "", "", fmt.Errorf("reloading document %s: %w", docID, err)
		}
	case err != nil:
		return "", "", fmt.Errorf("looking up document %s: %w", docID, err)
	}

	return s.resubmit(ctx, doc, opts)
}

// create is the exclusive UNKNOWN→PENDING path. The task and document rows
// are inserted atomically; the blob is written after, so a crash in between
// leaves a PENDING row without content. That window is an accepted
// recoverable inconsistency, resolved by failing and resetting the document.
func (s *QueueService) create(ctx context.Context, tool, docID, content string) (string, error) {
	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.NewString(),
		Tool:      tool,
		Status:    domain.StatusPending,
		CreatedAt: now,
	}
	doc := &domain.Document{
		DocID:     docID,
		TaskID:    task.ID,
		Tool:      tool,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.lifecycle.CreateTaskAndDocument(ctx, task, doc); err != nil {
		return "", err
	}

	path, err := s.blobs.Write(ctx, tool, docID, []byte(content))
	if err != nil {
		return "", fmt.Errorf("writing content for %s/%s: %w", tool, docID, err)
	}
	doc.Path = path

	logger.Debug("assigned doc %s to %s", docID, tool)
	return task.ID, nil
}

// resubmit handles a submit that found an existing row: either a reset
// back to PENDING or an idempotent no-op. The blob is never rewritten
// here; callers wanting fresh content must submit a new explicit id.
func (s *QueueService) resubmit(
	ctx context.Context,
	doc *domain.Document,
	opts driving.SubmitOptions,
) (string, string, error) {
	var resetFrom domain.Status
	switch {
	case doc.Status == domain.StatusError && opts.ResetError:
		resetFrom = domain.StatusError
	case doc.Status == domain.StatusStarted && opts.ResetPending:
		resetFrom = domain.StatusStarted
	default:
		logger.Debug("doc %s already had status %s", doc.DocID, doc.Status)
		return doc.TaskID, doc.DocID, nil
	}

	changed, err := s.lifecycle.UpdateDocumentStatus(ctx, doc.DocID,
		[]domain.Status{resetFrom}, domain.StatusPending)
	if err != nil {
		return "", "", fmt.Errorf("resetting document %s: %w", doc.DocID, err)
	}
	if changed {
		logger.Debug("re-queued doc %s from %s", doc.DocID, resetFrom)
		s.mirrorTask(ctx, doc.TaskID, domain.StatusPending)
	}
	// A lost reset race means someone else already moved the document on;
	// the ids are unchanged either way.
	return doc.TaskID, doc.DocID, nil
}

// Claim hands one PENDING document to the caller. The PENDING→STARTED flip
// happens inside the store as a single conditional update, so no two
// workers ever receive the same document.
func (s *QueueService) Claim(ctx context.Context, tool string) (*driving.Claimed, error) {
	doc, err := s.lifecycle.ClaimPending(ctx, tool)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil // empty queue, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("claiming for %s: %w", tool, err)
	}

	content, err := s.blobs.Read(ctx, tool, doc.DocID)
	if err != nil {
		return nil, fmt.Errorf("reading content for claimed %s/%s: %w", tool, doc.DocID, err)
	}

	s.mirrorTask(ctx, doc.TaskID, domain.StatusStarted)
	logger.Debug("claimed doc %s for %s (%d bytes)", doc.DocID, tool, len(content))

	return &driving.Claimed{DocID: doc.DocID, Content: string(content)}, nil
}

// Complete stores a result and flips the document to DONE.
func (s *QueueService) Complete(ctx context.Context, tool, docID, result string) error {
	return s.report(ctx, tool, docID, result, domain.StatusDone)
}

// Fail stores an error description and flips the document to ERROR.
func (s *QueueService) Fail(ctx context.Context, tool, docID, errText string) error {
	return s.report(ctx, tool, docID, errText, domain.StatusError)
}

// reportable are the statuses from which a worker outcome may be stored.
// PENDING is deliberately absent: a worker cannot report work it never
// claimed. DONE and ERROR remain writable so reports can be overwritten.
var reportable = []domain.Status{domain.StatusStarted, domain.StatusDone, domain.StatusError}

func (s *QueueService) report(ctx context.Context, tool, docID, payload string, to domain.Status) error {
	doc, err := s.lifecycle.GetDocument(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: cannot store %s for unknown document %s", domain.ErrInvalidTransition, to, docID)
	}
	if err != nil {
		return fmt.Errorf("looking up document %s: %w", docID, err)
	}
	if !domain.CanTransition(doc.Status, to) {
		return fmt.Errorf("%w: cannot store %s for document %s with status %s",
			domain.ErrInvalidTransition, to, docID, doc.Status)
	}

	if _, err := s.blobs.Write(ctx, tool, docID, []byte(payload)); err != nil {
		return fmt.Errorf("writing %s payload for %s/%s: %w", to, tool, docID, err)
	}

	changed, err := s.lifecycle.UpdateDocumentStatus(ctx, docID, reportable, to)
	if err != nil {
		return fmt.Errorf("flipping document %s to %s: %w", docID, to, err)
	}
	if !changed {
		// Reset won the race between our check and the flip.
		return fmt.Errorf("%w: document %s left %s before %s was stored",
			domain.ErrInvalidTransition, docID, doc.Status, to)
	}

	s.mirrorTask(ctx, doc.TaskID, to)
	return nil
}

// Status reports the current status of a document.
func (s *QueueService) Status(ctx context.Context, _ string, docID string) (domain.Status, error) {
	doc, err := s.lifecycle.GetDocument(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.StatusUnknown, nil
	}
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("looking up document %s: %w", docID, err)
	}
	return doc.Status, nil
}

// Result returns the stored result of a DONE document.
func (s *QueueService) Result(ctx context.Context, tool, docID, format string) (string, error) {
	status, err := s.Status(ctx, tool, docID)
	if err != nil {
		return "", err
	}

	switch status {
	case domain.StatusDone:
		// fall through to the read below
	case domain.StatusError:
		text, readErr := s.blobs.Read(ctx, tool, docID)
		if readErr != nil {
			return "", fmt.Errorf("%w: (stored error unreadable: %v)", domain.ErrFailed, readErr)
		}
		return "", fmt.Errorf("%w: %s", domain.ErrFailed, string(text))
	default:
		return "", fmt.Errorf("%w: document %s has status %s", domain.ErrNotReady, docID, status)
	}

	data, err := s.blobs.Read(ctx, tool, docID)
	if err != nil {
		return "", fmt.Errorf("reading result for %s/%s: %w", tool, docID, err)
	}
	result := string(data)

	if format == "" {
		return result, nil
	}
	if s.registry == nil {
		return "", fmt.Errorf("%w: no registry configured for conversion", domain.ErrUnknownTool)
	}
	runner, err := s.registry.Get(tool)
	if err != nil {
		return "", err
	}
	converted, err := runner.Convert(docID, result, format)
	if err != nil {
		return "", fmt.Errorf("converting %s/%s to %s: %w", tool, docID, format, err)
	}
	return converted, nil
}

// Statistics returns per-status document counts for a tool.
func (s *QueueService) Statistics(ctx context.Context, tool string) (map[domain.Status]int, error) {
	counts, err := s.lifecycle.CountByStatus(ctx, tool)
	if err != nil {
		return nil, fmt.Errorf("counting documents for %s: %w", tool, err)
	}
	return counts, nil
}

// mirrorTask copies a status flip onto the owning task. The document row
// is the source of truth; a failed mirror is logged, not propagated.
func (s *QueueService) mirrorTask(ctx context.Context, taskID string, status domain.Status) {
	if taskID == "" {
		return
	}
	if err := s.lifecycle.SetTaskStatus(ctx, taskID, status); err != nil {
		logger.Warn("mirroring status %s to task %s: %v", status, taskID, err)
	}
}
