package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/docflow-io/docflow/internal/core/domain"
	"github.com/docflow-io/docflow/internal/core/ports/driven"
	"github.com/docflow-io/docflow/internal/core/ports/driving"
)

// Ensure ToolRegistry implements the interface.
var _ driving.ToolRegistry = (*ToolRegistry)(nil)

// ToolRegistry holds the runners for known tools. Tool validation happens
// here; the queue core treats tool names as opaque otherwise.
type ToolRegistry struct {
	mu      sync.RWMutex
	runners map[string]driven.ToolRunner
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		runners: make(map[string]driven.ToolRunner),
	}
}

// Register adds a runner under its name.
func (r *ToolRegistry) Register(runner driven.ToolRunner) error {
	name := runner.Name()
	if name == "" {
		return fmt.Errorf("%w: tool name is empty", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runners[name]; ok {
		return fmt.Errorf("%w: tool %q", domain.ErrAlreadyExists, name)
	}
	r.runners[name] = runner
	return nil
}

// Get returns the runner for a tool name.
func (r *ToolRegistry) Get(name string) (driven.ToolRunner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known tools: %v)", domain.ErrUnknownTool, name, r.namesLocked())
	}
	return runner, nil
}

// Names returns all registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *ToolRegistry) namesLocked() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
