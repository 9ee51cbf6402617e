// Package upper is a trivial built-in processing tool that uppercases its
// input. It exists to exercise the full submit/claim/report path without an
// external NLP dependency, both in tests and in live smoke checks.
package upper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
)

// Ensure Tool implements the interface.
var _ driven.ToolRunner = (*Tool)(nil)

// Tool uppercases submitted content.
type Tool struct{}

// New creates the upper tool.
func New() *Tool {
	return &Tool{}
}

// Name returns the tool name used in queue routing.
func (t *Tool) Name() string {
	return "upper"
}

// Process uppercases the content. A "sleep" parameter holding a Go duration
// string delays the result, which is useful for exercising concurrent
// workers against a slow tool.
func (t *Tool) Process(ctx context.Context, content string, params map[string]string) (string, error) {
	if s := params["sleep"]; s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return "", fmt.Errorf("%w: sleep %q", domain.ErrInvalidInput, s)
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return strings.ToUpper(content), nil
}

// jsonResult is the envelope Convert produces for the "json" format.
type jsonResult struct {
	DocID  string `json:"doc_id"`
	Status string `json:"status"`
	Result string `json:"result"`
}

// Convert renders a stored result in the requested format. The empty format
// returns the result verbatim; "json" wraps it in a small envelope.
func (t *Tool) Convert(docID, result, format string) (string, error) {
	switch format {
	case "":
		return result, nil
	case "json":
		data, err := json.Marshal(jsonResult{
			DocID:  docID,
			Status: "OK",
			Result: result,
		})
		if err != nil {
			return "", fmt.Errorf("encoding result: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}
