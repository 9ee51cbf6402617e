// Package remote implements the queue port against a docflow server's HTTP
// API, letting workers and submitters run out-of-process from the store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
)

// errorMIME marks a PUT body as an error report. Must match the server.
const errorMIME = "application/prs.error+text"

// Ensure Client implements the interface.
var _ driving.Queue = (*Client)(nil)

// Client talks to a docflow server over HTTP.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a queue client for the server at baseURL,
// e.g. "http://localhost:5001". token may be empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Submit queues content for processing by tool.
func (c *Client) Submit(ctx context.Context, tool, content string, opts driving.SubmitOptions) (string, string, error) {
	query := url.Values{}
	if opts.DocID != "" {
		query.Set("doc_id", opts.DocID)
	}
	if opts.ResetError {
		query.Set("reset_error", "true")
	}
	if opts.ResetPending {
		query.Set("reset_pending", "true")
	}

	resp, err := c.do(ctx, http.MethodPost, c.toolURL(tool, "")+"?"+query.Encode(), "text/plain", strings.NewReader(content))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", "", responseError(resp)
	}
	return resp.Header.Get("Task-ID"), resp.Header.Get("ID"), nil
}

// Claim hands one pending document to the caller. An empty queue returns
// (nil, nil), mirroring the in-process queue.
func (c *Client) Claim(ctx context.Context, tool string) (*driving.Claimed, error) {
	resp, err := c.do(ctx, http.MethodGet, c.toolURL(tool, ""), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading claim body: %w", err)
	}
	return &driving.Claimed{
		DocID:   resp.Header.Get("ID"),
		Content: string(content),
	}, nil
}

// Complete records a successful result for a claimed document.
func (c *Client) Complete(ctx context.Context, tool, docID, result string) error {
	return c.report(ctx, tool, docID, result, "text/plain")
}

// Fail records an error description for a claimed document.
func (c *Client) Fail(ctx context.Context, tool, docID, errText string) error {
	return c.report(ctx, tool, docID, errText, errorMIME)
}

func (c *Client) report(ctx context.Context, tool, docID, body, contentType string) error {
	resp, err := c.do(ctx, http.MethodPut, c.toolURL(tool, docID), contentType, strings.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return responseError(resp)
	}
	return nil
}

// Status reports a document's status via a HEAD probe.
func (c *Client) Status(ctx context.Context, tool, docID string) (domain.Status, error) {
	resp, err := c.do(ctx, http.MethodHead, c.toolURL(tool, docID), "", nil)
	if err != nil {
		return domain.StatusUnknown, err
	}
	defer resp.Body.Close()

	status, err := domain.ParseStatus(resp.Header.Get("Status"))
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("server returned %q: %w", resp.Header.Get("Status"), err)
	}
	return status, nil
}

// Result fetches the stored result of a DONE document.
func (c *Client) Result(ctx context.Context, tool, docID, format string) (string, error) {
	target := c.toolURL(tool, docID)
	if format != "" {
		target += "?format=" + url.QueryEscape(format)
	}

	resp, err := c.do(ctx, http.MethodGet, target, "", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading result body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return string(body), nil
	case http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(body)), domain.ErrNotFound)
	case http.StatusConflict:
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(body)), domain.ErrNotReady)
	case http.StatusInternalServerError:
		if resp.Header.Get("Content-Type") == errorMIME {
			return "", fmt.Errorf("%w: %s", domain.ErrFailed, strings.TrimSpace(string(body)))
		}
		fallthrough
	default:
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// Statistics returns per-status document counts for a tool.
func (c *Client) Statistics(ctx context.Context, tool string) (map[domain.Status]int, error) {
	resp, err := c.do(ctx, http.MethodGet, c.toolURL(tool, "stats"), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var counts map[domain.Status]int
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		return nil, fmt.Errorf("decoding statistics: %w", err)
	}
	return counts, nil
}

// BulkSubmit submits many documents in one request.
func (c *Client) BulkSubmit(ctx context.Context, tool string, contents, ids []string, opts driving.SubmitOptions) ([]string, error) {
	query := url.Values{}
	if opts.ResetError {
		query.Set("reset_error", "true")
	}
	if opts.ResetPending {
		query.Set("reset_pending", "true")
	}

	payload, err := json.Marshal(struct {
		Contents []string `json:"contents"`
		IDs      []string `json:"ids,omitempty"`
	}{Contents: contents, IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("encoding bulk submit: %w", err)
	}

	target := c.toolURL(tool, "bulk/process")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var out []string
	if err := c.postJSON(ctx, target, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkStatus reports the status of many documents in one request.
func (c *Client) BulkStatus(ctx context.Context, tool string, ids []string) (map[string]domain.Status, error) {
	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding bulk status: %w", err)
	}

	var out map[string]domain.Status
	if err := c.postJSON(ctx, c.toolURL(tool, "bulk/status"), payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkResult fetches many results in one request.
func (c *Client) BulkResult(ctx context.Context, tool string, ids []string, format string) (map[string]driving.BulkResultItem, error) {
	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding bulk result: %w", err)
	}

	target := c.toolURL(tool, "bulk/result")
	if format != "" {
		target += "?format=" + url.QueryEscape(format)
	}

	var out map[string]driving.BulkResultItem
	if err := c.postJSON(ctx, target, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ==================== Helper Functions ====================

func (c *Client) toolURL(tool, suffix string) string {
	u := c.baseURL + "/api/tools/" + url.PathEscape(tool) + "/"
	if suffix != "" {
		u += suffix
	}
	return u
}

func (c *Client) do(ctx context.Context, method, target, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, target string, payload []byte, out any) error {
	resp, err := c.do(ctx, http.MethodPost, target, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// responseError turns an unexpected HTTP response into a domain error where
// the code has a clear mapping.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, domain.ErrInvalidInput)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, domain.ErrInvalidTransition)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", msg, domain.ErrInvalidInput)
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
}
