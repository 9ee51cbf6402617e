package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
)

// statusCode maps a document status onto the HTTP code reported by status
// probes: polling clients branch on the code alone.
func statusCode(status domain.Status) int {
	switch status {
	case domain.StatusDone:
		return http.StatusOK
	case domain.StatusPending, domain.StatusStarted:
		return http.StatusAccepted
	case domain.StatusError:
		return http.StatusInternalServerError
	default:
		return http.StatusNotFound
	}
}

// handleSubmit queues the request body for processing.
// POST /api/tools/{tool}/?doc_id=&reset_error=&reset_pending=
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	tool := r.PathValue("tool")

	content, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := driving.SubmitOptions{
		DocID:        r.URL.Query().Get("doc_id"),
		ResetError:   queryFlag(r, "reset_error"),
		ResetPending: queryFlag(r, "reset_pending"),
	}

	taskID, docID, err := s.queue.Submit(r.Context(), tool, string(content), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("ID", docID)
	w.Header().Set("Task-ID", taskID)
	w.Header().Set("Location", "/api/tools/"+tool+"/"+docID)
	w.WriteHeader(http.StatusAccepted)
	io.WriteString(w, docID) //nolint:errcheck
}

// handleClaim hands one pending document to the caller.
// GET /api/tools/{tool}/
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	tool := r.PathValue("tool")

	claimed, err := s.queue.Claim(r.Context(), tool)
	if err != nil {
		writeError(w, err)
		return
	}
	if claimed == nil {
		http.Error(w, "queue is empty", http.StatusNotFound)
		return
	}

	w.Header().Set("ID", claimed.DocID)
	io.WriteString(w, claimed.Content) //nolint:errcheck
}

// handleResult returns a stored result, or, for HEAD requests, reports the
// document status through the response code alone.
// GET|HEAD /api/tools/{tool}/{id}?format=
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	tool := r.PathValue("tool")
	docID := r.PathValue("id")

	status, err := s.queue.Status(r.Context(), tool, docID)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Status", string(status))
		w.WriteHeader(statusCode(status))
		return
	}

	if status == domain.StatusUnknown {
		http.Error(w, "unknown document: "+docID, http.StatusNotFound)
		return
	}

	result, err := s.queue.Result(r.Context(), tool, docID, r.URL.Query().Get("format"))
	if errors.Is(err, domain.ErrFailed) {
		w.Header().Set("Content-Type", ErrorMIME)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, err.Error()) //nolint:errcheck
		return
	}
	if errors.Is(err, domain.ErrNotReady) {
		http.Error(w, "document is not processed yet", http.StatusConflict)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	io.WriteString(w, result) //nolint:errcheck
}

// handleReport records a processing outcome for a claimed document. A body
// tagged with the error MIME type is an error report; anything else is a
// successful result.
// PUT /api/tools/{tool}/{id}
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	tool := r.PathValue("tool")
	docID := r.PathValue("id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if r.Header.Get("Content-Type") == ErrorMIME {
		err = s.queue.Fail(r.Context(), tool, docID, string(body))
	} else {
		err = s.queue.Complete(r.Context(), tool, docID, string(body))
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStats reports per-status document counts.
// GET /api/tools/{tool}/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.queue.Statistics(r.Context(), r.PathValue("tool"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, counts)
}

// bulkProcessRequest is the object form of a bulk submit body. A bare JSON
// array of content strings is accepted as shorthand.
type bulkProcessRequest struct {
	Contents []string `json:"contents"`
	IDs      []string `json:"ids,omitempty"`
}

// handleBulkProcess submits many documents in one call and returns their ids.
// POST /api/tools/{tool}/bulk/process?reset_error=&reset_pending=
func (s *Server) handleBulkProcess(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var req bulkProcessRequest
	if err := json.Unmarshal(body, &req.Contents); err != nil {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "decoding body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	opts := driving.SubmitOptions{
		ResetError:   queryFlag(r, "reset_error"),
		ResetPending: queryFlag(r, "reset_pending"),
	}

	ids, err := s.queue.BulkSubmit(r.Context(), r.PathValue("tool"), req.Contents, req.IDs, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, ids)
}

// handleBulkStatus reports the status of many documents.
// POST /api/tools/{tool}/bulk/status with a JSON array of ids.
func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}

	statuses, err := s.queue.BulkStatus(r.Context(), r.PathValue("tool"), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, statuses)
}

// handleBulkResult fetches many results, reporting per-document failures
// inline instead of failing the batch.
// POST /api/tools/{tool}/bulk/result?format= with a JSON array of ids.
func (s *Server) handleBulkResult(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}

	results, err := s.queue.BulkResult(r.Context(), r.PathValue("tool"), ids, r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, results)
}

// decodeIDs reads a JSON array of document ids from the request body.
func decodeIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		http.Error(w, "decoding body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return ids, true
}

// queryFlag interprets a query parameter as a boolean flag.
func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps domain errors onto HTTP codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrUnknownTool):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrAlreadyExists):
		code = http.StatusConflict
	}
	http.Error(w, err.Error(), code)
}
