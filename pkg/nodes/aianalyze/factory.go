package aianalyze

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return models.NodeTypeAIAgentAnalyze
}

func (f *Factory) Name() string {
	return "AI Analyze"
}

func (f *Factory) Description() string {
	return "Sends rendered input to an AI completion endpoint and returns the analysis"
}

func (f *Factory) Category() models.CategoryType {
	return models.CategoryTypeAction
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"endpoint", "model", "input"},
		"properties": map[string]any{
			"endpoint": map[string]any{
				"type":        "string",
				"description": "Chat-completion style endpoint URL",
			},
			"model": map[string]any{
				"type": "string",
			},
			"instructions": map[string]any{
				"type":        "string",
				"description": "System instructions, may contain template expressions",
			},
			"input": map[string]any{
				"type":        "string",
				"description": "Input to analyze, may contain template expressions",
			},
			"api_key_env": map[string]any{
				"type":        "string",
				"description": "Name of the environment variable holding the API key",
			},
			"timeout_ms": map[string]any{
				"type":    "number",
				"minimum": 1,
				"default": 60000,
			},
		},
	}
}

func (f *Factory) Create(id string, config map[string]any) (protocol.NodeExecutor, error) {
	return NewNode(id, config)
}
