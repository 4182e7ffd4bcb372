package switchnode

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
)

type Factory struct{}

// NewFactory creates the CONDITION_SWITCH node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return models.NodeTypeConditionSwitch
}

func (f *Factory) Name() string {
	return "Switch"
}

func (f *Factory) Description() string {
	return "Routes execution to the output handle matching a rendered value, or to default"
}

func (f *Factory) Category() models.CategoryType {
	return models.CategoryTypeCondition
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"value", "cases"},
		"properties": map[string]any{
			"value": map[string]any{
				"type":        "string",
				"description": "Template rendered and compared against cases",
			},
			"cases": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string"},
			},
		},
	}
}

func (f *Factory) Create(id string, config map[string]any) (protocol.NodeExecutor, error) {
	return NewNode(id, config)
}
