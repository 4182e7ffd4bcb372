package loop

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
)

type Factory struct{}

// NewFactory creates the LOOP_FOR_EACH node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return models.NodeTypeLoopForEach
}

func (f *Factory) Name() string {
	return "For Each"
}

func (f *Factory) Description() string {
	return "Runs its body subgraph once per element of a bounded array"
}

func (f *Factory) Category() models.CategoryType {
	return models.CategoryTypeLoop
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"items_path"},
		"properties": map[string]any{
			"items_path": map[string]any{
				"type":        "string",
				"description": "Run-context path resolving to the array to iterate, e.g. \"search.jobs\"",
			},
			"max_items": map[string]any{
				"type":        "number",
				"minimum":     1,
				"maximum":     DefaultMaxItems,
				"description": "Iteration bound; runs exceeding it fail with a loop bounds error",
			},
		},
	}
}

func (f *Factory) Create(id string, config map[string]any) (protocol.NodeExecutor, error) {
	return NewNode(id, config)
}
