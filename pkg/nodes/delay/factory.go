package delay

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
)

type Factory struct{}

// NewFactory creates the WAIT_DELAY node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return models.NodeTypeWaitDelay
}

func (f *Factory) Name() string {
	return "Wait"
}

func (f *Factory) Description() string {
	return "Suspends this branch of the run for a configured number of milliseconds"
}

func (f *Factory) Category() models.CategoryType {
	return models.CategoryTypeWait
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"delay_ms"},
		"properties": map[string]any{
			"delay_ms": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": MaxDelay.Milliseconds(),
			},
		},
	}
}

func (f *Factory) Create(id string, config map[string]any) (protocol.NodeExecutor, error) {
	return NewNode(id, config)
}
