package services

import (
	"context"
	"fmt"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
)

// Bulk façade: vectorised wrappers over the single-item operations.
// Each item is applied independently; there is no cross-item atomicity or
// ordering guarantee, and one item's failure never aborts the batch.

// BulkSubmit submits many documents. ids, when non-nil, supplies explicit
// document ids and must match contents in length. The returned slice holds
// one doc id per input; inputs that failed get an empty id.
func (s *QueueService) BulkSubmit(
	ctx context.Context,
	tool string,
	contents, ids []string,
	opts driving.SubmitOptions,
) ([]string, error) {
	if ids != nil && len(ids) != len(contents) {
		return nil, fmt.Errorf("%w: got %d ids for %d documents", domain.ErrInvalidInput, len(ids), len(contents))
	}

	out := make([]string, len(contents))
	var firstErr error
	for i, content := range contents {
		itemOpts := opts
		if ids != nil {
			itemOpts.DocID = ids[i]
		}
		_, docID, err := s.Submit(ctx, tool, content, itemOpts)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[i] = docID
	}
	return out, firstErr
}

// BulkStatus reports the status of many documents.
func (s *QueueService) BulkStatus(
	ctx context.Context,
	tool string,
	ids []string,
) (map[string]domain.Status, error) {
	out := make(map[string]domain.Status, len(ids))
	for _, id := range ids {
		status, err := s.Status(ctx, tool, id)
		if err != nil {
			// Report what we can; an unreadable row is UNKNOWN to the caller.
			out[id] = domain.StatusUnknown
			continue
		}
		out[id] = status
	}
	return out, nil
}

// BulkResult fetches many results, recording per-item errors in the value
// instead of aborting the batch.
func (s *QueueService) BulkResult(
	ctx context.Context,
	tool string,
	ids []string,
	format string,
) (map[string]driving.BulkResultItem, error) {
	out := make(map[string]driving.BulkResultItem, len(ids))
	for _, id := range ids {
		result, err := s.Result(ctx, tool, id, format)
		if err != nil {
			out[id] = driving.BulkResultItem{Err: err.Error()}
			continue
		}
		out[id] = driving.BulkResultItem{Result: result}
	}
	return out, nil
}
