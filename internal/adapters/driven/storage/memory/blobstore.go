package memory

import (
	"context"
	"sync"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

func blobKey(tool, docID string) string {
	return tool + "/" + docID
}

// Write stores data under (tool, docID), overwriting any previous value.
func (s *BlobStore) Write(_ context.Context, tool, docID string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := blobKey(tool, docID)
	s.blobs[key] = append([]byte(nil), data...)
	return "mem://" + key, nil
}

// Read returns the bytes stored under (tool, docID).
func (s *BlobStore) Read(_ context.Context, tool, docID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[blobKey(tool, docID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes the blob under (tool, docID).
func (s *BlobStore) Delete(_ context.Context, tool, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, blobKey(tool, docID))
	return nil
}
