// Package trigger provides the trigger node implementations: manual, schedule,
// webhook, and event. Trigger executors do no work of their own; they surface
// the trigger payload from the run context so downstream nodes can reference
// it through the trigger node's key as well.
package trigger

import (
	"context"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// Node is the shared executor for all trigger types.
type Node struct {
	id       string
	nodeType string
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return n.nodeType
}

// Execute passes the trigger payload through as this node's output.
func (n *Node) Execute(_ context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	payload, _ := rc.Output(models.TriggerKey)

	return &models.NodeResult{
		NodeID: n.id,
		Output: payload,
	}, nil
}
