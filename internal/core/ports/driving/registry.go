package driving

import (
	"github.com/docflow-io/docflow/internal/core/ports/driven"
)

// ToolRegistry maps tool names to their runners. The registry is the
// boundary that decides which tool names are valid; the queue core only
// consults it for result conversion and tool validation.
type ToolRegistry interface {
	// Register adds a runner under its name.
	// Returns domain.ErrAlreadyExists if the name is taken.
	Register(runner driven.ToolRunner) error

	// Get returns the runner for a tool name.
	// Returns domain.ErrUnknownTool if the name is not registered.
	Get(name string) (driven.ToolRunner, error)

	// Names returns all registered tool names, sorted.
	Names() []string
}
