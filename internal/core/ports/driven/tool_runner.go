package driven

import "context"

// ToolRunner executes a named processing tool. Runners are opaque external
// collaborators: their internals (parsers, models, external servers) are
// none of the core's business. A runner is invoked by a worker only after
// the document has been claimed.
type ToolRunner interface {
	// Name returns the tool name the runner registers under.
	Name() string

	// Process runs the tool over the submitted content and returns the
	// result. Any error aborts the document and is recorded via Fail.
	Process(ctx context.Context, content string, params map[string]string) (string, error)

	// Convert renders a stored result in the requested format.
	// Returns domain.ErrUnsupportedFormat if the tool cannot produce it.
	Convert(docID, result, format string) (string, error)
}
