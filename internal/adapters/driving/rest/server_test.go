package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docflow-io/docflow/internal/adapters/driven/storage/memory"
	"github.com/docflow-io/docflow/internal/adapters/driven/tools/upper"
	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/services"
)

// newTestServer wires a queue over in-memory stores behind the REST handler.
func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()

	registry := services.NewToolRegistry()
	require.NoError(t, registry.Register(upper.New()))

	queue := services.NewQueueService(memory.NewLifecycleStore(), memory.NewBlobStore(), registry)
	ts := httptest.NewServer(NewServer(queue, Options{Token: token}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, contentType, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestSubmitClaimReportResult(t *testing.T) {
	ts := newTestServer(t, "")
	base := ts.URL + "/api/tools/upper"

	// Submit.
	resp := do(t, http.MethodPost, base+"/", "text/plain", "hello world")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	docID := resp.Header.Get("ID")
	assert.True(t, domain.IsIdentity(docID))
	assert.NotEmpty(t, resp.Header.Get("Task-ID"))
	assert.Equal(t, "/api/tools/upper/"+docID, resp.Header.Get("Location"))
	assert.Equal(t, docID, readBody(t, resp))

	// Status probe: queued.
	resp = do(t, http.MethodHead, base+"/"+docID, "", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "PENDING", resp.Header.Get("Status"))

	// Result before processing: conflict.
	resp = do(t, http.MethodGet, base+"/"+docID, "", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Claim.
	resp = do(t, http.MethodGet, base+"/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, docID, resp.Header.Get("ID"))
	assert.Equal(t, "hello world", readBody(t, resp))

	// Report success.
	resp = do(t, http.MethodPut, base+"/"+docID, "text/plain", "HELLO WORLD")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Status probe: done.
	resp = do(t, http.MethodHead, base+"/"+docID, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DONE", resp.Header.Get("Status"))

	// Fetch result, raw and converted.
	resp = do(t, http.MethodGet, base+"/"+docID, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HELLO WORLD", readBody(t, resp))

	resp = do(t, http.MethodGet, base+"/"+docID+"?format=json", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t,
		`{"doc_id":"`+docID+`","status":"OK","result":"HELLO WORLD"}`,
		readBody(t, resp))
}

func TestClaimEmptyQueue(t *testing.T) {
	ts := newTestServer(t, "")

	resp := do(t, http.MethodGet, ts.URL+"/api/tools/upper/", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportFailure(t *testing.T) {
	ts := newTestServer(t, "")
	base := ts.URL + "/api/tools/upper"

	resp := do(t, http.MethodPost, base+"/", "text/plain", "bad doc")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	docID := resp.Header.Get("ID")

	resp = do(t, http.MethodGet, base+"/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Error MIME flips the report into a failure.
	resp = do(t, http.MethodPut, base+"/"+docID, ErrorMIME, "parser exploded")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodHead, base+"/"+docID, "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "ERROR", resp.Header.Get("Status"))

	resp = do(t, http.MethodGet, base+"/"+docID, "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, ErrorMIME, resp.Header.Get("Content-Type"))
	assert.Contains(t, readBody(t, resp), "parser exploded")
}

func TestReportWithoutClaim(t *testing.T) {
	ts := newTestServer(t, "")
	base := ts.URL + "/api/tools/upper"

	resp := do(t, http.MethodPost, base+"/", "text/plain", "not claimed")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	docID := resp.Header.Get("ID")

	resp = do(t, http.MethodPut, base+"/"+docID, "text/plain", "RESULT")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStatusUnknownDocument(t *testing.T) {
	ts := newTestServer(t, "")
	base := ts.URL + "/api/tools/upper"

	resp := do(t, http.MethodHead, base+"/0x00000000000000000000000000000000", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN", resp.Header.Get("Status"))

	resp = do(t, http.MethodGet, base+"/0x00000000000000000000000000000000", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitDedupAndReset(t *testing.T) {
	ts := newTestServer(t, "")
	base := ts.URL + "/api/tools/upper"

	resp := do(t, http.MethodPost, base+"/", "text/plain", "same doc")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	docID := resp.Header.Get("ID")

	// Resubmission is an idempotent no-op with the same id.
	resp = do(t, http.MethodPost, base+"/", "text/plain", "same doc")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, docID, resp.Header.Get("ID"))

	// Fail it, then requeue via reset_error.
	resp = do(t, http.MethodGet, base+"/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodPut, base+"/"+docID, ErrorMIME, "boom")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/?reset_error=true", "text/plain", "same doc")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = do(t, http.MethodHead, base+"/"+docID, "", "")
	assert.Equal(t, "PENDING", resp.Header.Get("Status"))
}

func TestBulkEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	base := ts.URL + "/api/tools/upper"

	// Bulk process accepts a bare array of contents.
	resp := do(t, http.MethodPost, base+"/bulk/process", "application/json", `["one","two"]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &ids))
	require.Len(t, ids, 2)

	// Bulk status.
	payload, err := json.Marshal(append(ids, "0x00000000000000000000000000000000"))
	require.NoError(t, err)
	resp = do(t, http.MethodPost, base+"/bulk/status", "application/json", string(payload))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var statuses map[string]domain.Status
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &statuses))
	assert.Equal(t, domain.StatusPending, statuses[ids[0]])
	assert.Equal(t, domain.StatusUnknown, statuses["0x00000000000000000000000000000000"])

	// Complete one document, then fetch bulk results.
	resp = do(t, http.MethodGet, base+"/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	claimedID := resp.Header.Get("ID")
	resp = do(t, http.MethodPut, base+"/"+claimedID, "text/plain", "DONE TEXT")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/bulk/result", "application/json", string(payload))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results map[string]struct {
		Result string `json:"result"`
		Err    string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &results))
	assert.Equal(t, "DONE TEXT", results[claimedID].Result)
	assert.NotEmpty(t, results["0x00000000000000000000000000000000"].Err)
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	base := ts.URL + "/api/tools/upper"

	resp := do(t, http.MethodPost, base+"/", "text/plain", "counted")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/stats", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var counts map[domain.Status]int
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &counts))
	assert.Equal(t, 1, counts[domain.StatusPending])
}

func TestTokenAuthentication(t *testing.T) {
	ts := newTestServer(t, "sekrit")
	base := ts.URL + "/api/tools/upper"

	// Missing token.
	resp := do(t, http.MethodPost, base+"/", "text/plain", "x")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Wrong scheme.
	req, err := http.NewRequest(http.MethodPost, base+"/", strings.NewReader("x"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Correct token.
	req, err = http.NewRequest(http.MethodPost, base+"/", strings.NewReader("x"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Token sekrit")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}
