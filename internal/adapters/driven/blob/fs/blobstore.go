// Package fs implements driven.BlobStore on the local filesystem.
//
// Layout is one directory per tool under the data directory, one file per
// document id. The layout also works over a shared mount (e.g. NFS), which
// lets workers on other machines read content directly.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore stores document blobs as plain files.
type BlobStore struct {
	rootDir string
}

// NewBlobStore creates a blob store rooted at dataDir.
// If dataDir is empty, defaults to ~/.docflow/blobs.
func NewBlobStore(dataDir string) (*BlobStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docflow", "blobs")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	return &BlobStore{rootDir: dataDir}, nil
}

// Root returns the blob root directory.
func (s *BlobStore) Root() string {
	return s.rootDir
}

// Write stores data under (tool, docID), overwriting any previous value.
func (s *BlobStore) Write(_ context.Context, tool, docID string, data []byte) (string, error) {
	path, err := s.filename(tool, docID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating tool directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing blob %s/%s: %w", tool, docID, err)
	}
	return path, nil
}

// Read returns the bytes stored under (tool, docID).
func (s *BlobStore) Read(_ context.Context, tool, docID string) ([]byte, error) {
	path, err := s.filename(tool, docID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("blob %s/%s: %w", tool, docID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob %s/%s: %w", tool, docID, err)
	}
	return data, nil
}

// Delete removes the blob under (tool, docID). Missing blobs are ignored.
func (s *BlobStore) Delete(_ context.Context, tool, docID string) error {
	path, err := s.filename(tool, docID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob %s/%s: %w", tool, docID, err)
	}
	return nil
}

// filename maps (tool, docID) onto a path under the root. Both components
// must be single path elements; anything that could escape the root is
// rejected.
func (s *BlobStore) filename(tool, docID string) (string, error) {
	if !validElement(tool) {
		return "", fmt.Errorf("%w: tool %q", domain.ErrInvalidInput, tool)
	}
	if !validElement(docID) {
		return "", fmt.Errorf("%w: doc id %q", domain.ErrInvalidInput, docID)
	}
	return filepath.Join(s.rootDir, tool, docID), nil
}

func validElement(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\")
}
