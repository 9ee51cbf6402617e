package driven

import "context"

// BlobStore is durable byte storage keyed by (tool, document id).
//
// The store has no transactional coupling to the LifecycleStore; a crash
// between a status flip and a blob write leaves a recoverable inconsistency
// that callers must tolerate.
type BlobStore interface {
	// Write stores data under (tool, docID), overwriting any previous
	// value, and returns an opaque locator for the stored blob.
	Write(ctx context.Context, tool, docID string, data []byte) (string, error)

	// Read returns the bytes stored under (tool, docID).
	// Returns domain.ErrNotFound if no blob exists.
	Read(ctx context.Context, tool, docID string) ([]byte, error)

	// Delete removes the blob under (tool, docID).
	Delete(ctx context.Context, tool, docID string) error
}
