// Package transform provides the TRANSFORM node.
package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

// Node implements TRANSFORM. Its expression map is rendered against the run
// context and the rendered values become the node's output.
type Node struct {
	id         string
	expression map[string]any
}

func NewNode(id string, config map[string]any) (*Node, error) {
	expression, ok := config["expression"].(map[string]any)
	if !ok || len(expression) == 0 {
		return nil, errors.New("missing required field 'expression'")
	}

	return &Node{id: id, expression: expression}, nil
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return models.NodeTypeTransform
}

func (n *Node) Execute(_ context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	rendered, err := template.RenderConfig(n.expression, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering expression: %w", err)
	}

	return &models.NodeResult{NodeID: n.id, Output: rendered}, nil
}
