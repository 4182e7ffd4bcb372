// Package protocol defines the interfaces and contracts for workflow node
// executors.
package protocol

import (
	"context"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// NodeExecutor is one runnable node instance. Execute receives the node's
// interpolated configuration state via the factory and the accumulated run
// context; it returns the node's result or an error that the engine records
// in the execution trace.
type NodeExecutor interface {
	// ID returns the workflow node ID this executor was created for.
	ID() string

	// Type returns the node type identifier.
	Type() string

	// Execute runs the node against the run context.
	Execute(ctx context.Context, rc *models.RunContext) (*models.NodeResult, error)
}

// NodeFactory creates node executors and describes the node type to the
// editor: display metadata, category, and the JSON schema its config must
// satisfy.
type NodeFactory interface {
	// Type returns the unique node type identifier (registry key)
	Type() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Category returns the node category
	Category() models.CategoryType

	// Schema returns the JSON schema for configuring this node
	Schema() map[string]any

	// Create creates a new executor bound to a workflow node
	Create(id string, config map[string]any) (NodeExecutor, error)
}
