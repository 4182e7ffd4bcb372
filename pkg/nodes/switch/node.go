// Package switchnode provides the CONDITION_SWITCH multi-way branching node.
// The executor renders a value and routes to the output handle named after the
// first matching case, or to the default handle.
package switchnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

// Node implements CONDITION_SWITCH.
type Node struct {
	id    string
	value string
	cases []string
}

// NewNode creates a switch node from its config.
func NewNode(id string, config map[string]any) (*Node, error) {
	value, ok := config["value"].(string)
	if !ok || value == "" {
		return nil, errors.New("missing required field 'value'")
	}

	rawCases, ok := config["cases"].([]any)
	if !ok || len(rawCases) == 0 {
		return nil, errors.New("missing required field 'cases'")
	}

	cases := make([]string, 0, len(rawCases))

	for _, raw := range rawCases {
		name, ok := raw.(string)
		if !ok || name == "" {
			return nil, errors.New("cases must be non-empty strings")
		}

		cases = append(cases, name)
	}

	return &Node{id: id, value: value, cases: cases}, nil
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return models.NodeTypeConditionSwitch
}

// Execute renders the value template and selects the matching case handle.
func (n *Node) Execute(_ context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	rendered, err := template.RenderString(n.value, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering switch value: %w", err)
	}

	handle := models.HandleDefault

	for _, candidate := range n.cases {
		if rendered == candidate {
			handle = candidate

			break
		}
	}

	return &models.NodeResult{
		NodeID: n.id,
		Handle: handle,
		Output: map[string]any{
			"value":   rendered,
			"matched": handle,
		},
	}, nil
}
