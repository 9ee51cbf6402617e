// Package memory provides in-memory implementations of the driven storage
// ports. They hold the same contracts as the durable adapters and exist
// for isolated tests and ephemeral setups.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
)

// Ensure LifecycleStore implements the interface.
var _ driven.LifecycleStore = (*LifecycleStore)(nil)

// LifecycleStore is an in-memory implementation of driven.LifecycleStore.
// A single mutex serialises every operation, which trivially satisfies the
// conditional-update contract.
type LifecycleStore struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
	docs  map[string]domain.Document
}

// NewLifecycleStore creates an empty in-memory lifecycle store.
func NewLifecycleStore() *LifecycleStore {
	return &LifecycleStore{
		tasks: make(map[string]domain.Task),
		docs:  make(map[string]domain.Document),
	}
}

// CreateTaskAndDocument inserts a task and its document atomically.
func (s *LifecycleStore) CreateTaskAndDocument(_ context.Context, task *domain.Task, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.DocID]; ok {
		return domain.ErrAlreadyExists
	}
	s.tasks[task.ID] = *task
	s.docs[doc.DocID] = *doc
	return nil
}

// GetTask retrieves a task by id.
func (s *LifecycleStore) GetTask(_ context.Context, taskID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &task, nil
}

// SetTaskStatus updates a task's mirrored status.
func (s *LifecycleStore) SetTaskStatus(_ context.Context, taskID string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	task.Status = status
	s.tasks[taskID] = task
	return nil
}

// GetDocument retrieves a document by id.
func (s *LifecycleStore) GetDocument(_ context.Context, docID string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// UpdateDocumentStatus conditionally flips a document's status.
func (s *LifecycleStore) UpdateDocumentStatus(
	_ context.Context,
	docID string,
	from []domain.Status,
	to domain.Status,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[docID]
	if !ok {
		return false, nil
	}
	if !statusIn(doc.Status, from) {
		return false, nil
	}
	doc.Status = to
	doc.UpdatedAt = time.Now().UTC()
	s.docs[docID] = doc
	return true, nil
}

// ClaimPending atomically selects one PENDING document for the tool and
// flips it to STARTED. Map iteration order makes the selection arbitrary,
// which the contract allows.
func (s *LifecycleStore) ClaimPending(_ context.Context, tool string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, doc := range s.docs {
		if doc.Tool != tool || doc.Status != domain.StatusPending {
			continue
		}
		doc.Status = domain.StatusStarted
		doc.UpdatedAt = time.Now().UTC()
		s.docs[id] = doc
		return &doc, nil
	}
	return nil, domain.ErrNotFound
}

// CountByStatus returns the number of documents per status for a tool.
func (s *LifecycleStore) CountByStatus(_ context.Context, tool string) (map[domain.Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[domain.Status]int)
	for _, doc := range s.docs {
		if doc.Tool == tool {
			counts[doc.Status]++
		}
	}
	return counts, nil
}

func statusIn(s domain.Status, set []domain.Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
