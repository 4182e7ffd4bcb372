// Package conditional provides the CONDITION_IF branching node. The executor
// evaluates a boolean expression against the run context and routes execution
// to the true or false output handle.
package conditional

import (
	"context"
	"errors"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

// Node implements CONDITION_IF.
type Node struct {
	id         string
	expression string
}

// NewNode creates a conditional node from its config.
func NewNode(id string, config map[string]any) (*Node, error) {
	expression, ok := config["expression"].(string)
	if !ok || expression == "" {
		return nil, errors.New("missing required field 'expression'")
	}

	return &Node{id: id, expression: expression}, nil
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return models.NodeTypeConditionIf
}

// Execute evaluates the expression and selects the true or false handle. A
// failing evaluation is a node error, recorded in the trace by the engine.
func (n *Node) Execute(_ context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	result, err := template.EvaluateCondition(n.expression, rc)
	if err != nil {
		return nil, err
	}

	handle := models.HandleFalse
	if result {
		handle = models.HandleTrue
	}

	return &models.NodeResult{
		NodeID: n.id,
		Handle: handle,
		Output: map[string]any{
			"condition_result": result,
			"expression":       n.expression,
		},
	}, nil
}
