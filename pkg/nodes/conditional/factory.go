package conditional

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
)

// Factory creates conditional node executors.
type Factory struct{}

// NewFactory creates the CONDITION_IF node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return models.NodeTypeConditionIf
}

func (f *Factory) Name() string {
	return "If Condition"
}

func (f *Factory) Description() string {
	return "Evaluates a condition and routes execution to the true or false branch"
}

func (f *Factory) Category() models.CategoryType {
	return models.CategoryTypeCondition
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"expression"},
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Boolean expression, e.g. \"analyze.score >= 7\"",
			},
		},
	}
}

func (f *Factory) Create(id string, config map[string]any) (protocol.NodeExecutor, error) {
	return NewNode(id, config)
}
