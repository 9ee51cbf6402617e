package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
)

// lifecycleStore implements driven.LifecycleStore.
//
// Every conditional operation is a single UPDATE statement with its condition
// in the WHERE clause, so SQLite's own locking guarantees atomicity across
// processes sharing the database file.
type lifecycleStore struct {
	store *Store
}

var _ driven.LifecycleStore = (*lifecycleStore)(nil)

// CreateTaskAndDocument inserts a task and its document atomically.
// The INSERT OR IGNORE on the document primary key is what serialises
// concurrent creates: the loser's transaction rolls back untouched.
func (s *lifecycleStore) CreateTaskAndDocument(
	ctx context.Context,
	task *domain.Task,
	doc *domain.Document,
) (err error) {
	if task == nil || doc == nil {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, tool, status, created_at)
		VALUES (?, ?, ?, ?)
	`, task.ID, task.Tool, string(task.Status), formatTime(task.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO documents (doc_id, task_id, tool, path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.DocID, doc.TaskID, doc.Tool, doc.Path, string(doc.Status),
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking document insert: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyExists
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetTask retrieves a task by id.
func (s *lifecycleStore) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, tool, status, created_at
		FROM tasks WHERE id = ?
	`, taskID)

	var task domain.Task
	var status, createdAt string
	if err := row.Scan(&task.ID, &task.Tool, &status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	task.Status = domain.Status(status)
	task.CreatedAt = parseTime(createdAt)
	return &task, nil
}

// SetTaskStatus updates a task's mirrored status.
func (s *lifecycleStore) SetTaskStatus(ctx context.Context, taskID string, status domain.Status) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE tasks SET status = ? WHERE id = ?", string(status), taskID)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking task update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDocument retrieves a document by id.
func (s *lifecycleStore) GetDocument(ctx context.Context, docID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT doc_id, task_id, tool, path, status, created_at, updated_at
		FROM documents WHERE doc_id = ?
	`, docID)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocumentStatus conditionally flips a document's status. The from-set
// lives in the WHERE clause, so the check and the write are one statement.
func (s *lifecycleStore) UpdateDocumentStatus(
	ctx context.Context,
	docID string,
	from []domain.Status,
	to domain.Status,
) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}

	args := make([]interface{}, 0, len(from)+3)
	args = append(args, string(to), formatTime(time.Now().UTC()), docID)
	for _, status := range from {
		args = append(args, string(status))
	}

	query := fmt.Sprintf(`
		UPDATE documents SET status = ?, updated_at = ?
		WHERE doc_id = ? AND status IN (%s)
	`, placeholders(len(from)))

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking document update: %w", err)
	}
	return affected > 0, nil
}

// ClaimPending atomically selects one PENDING document for the tool and
// flips it to STARTED. The inner SELECT and the status guard make the whole
// claim a single conditional UPDATE; RETURNING hands back the claimed row.
func (s *lifecycleStore) ClaimPending(ctx context.Context, tool string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		UPDATE documents SET status = ?, updated_at = ?
		WHERE doc_id = (
			SELECT doc_id FROM documents
			WHERE tool = ? AND status = ?
			LIMIT 1
		) AND status = ?
		RETURNING doc_id, task_id, tool, path, status, created_at, updated_at
	`, string(domain.StatusStarted), formatTime(time.Now().UTC()),
		tool, string(domain.StatusPending), string(domain.StatusPending))

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// CountByStatus returns the number of documents per status for a tool.
func (s *lifecycleStore) CountByStatus(ctx context.Context, tool string) (map[domain.Status]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM documents
		WHERE tool = ?
		GROUP BY status
	`, tool)
	if err != nil {
		return nil, fmt.Errorf("querying status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[domain.Status(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}

	return counts, nil
}

// ==================== Helper Functions ====================

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var status, createdAt, updatedAt string

	if err := row.Scan(&doc.DocID, &doc.TaskID, &doc.Tool, &doc.Path,
		&status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.Status(status)
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	return &doc, nil
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// formatTime formats a time to an RFC3339 string for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a stored RFC3339 string back to time.Time.
// Returns zero time if the string is empty or invalid.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
