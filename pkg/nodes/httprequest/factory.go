package httprequest

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return models.NodeTypeHTTPRequest
}

func (f *Factory) Name() string {
	return "HTTP Request"
}

func (f *Factory) Description() string {
	return "Performs an HTTP request and exposes the response to downstream nodes"
}

func (f *Factory) Category() models.CategoryType {
	return models.CategoryTypeAction
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"url"},
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Request URL, may contain template expressions",
			},
			"method": map[string]any{
				"type":    "string",
				"enum":    []any{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
				"default": "GET",
			},
			"headers": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Request body, may contain template expressions",
			},
			"timeout_ms": map[string]any{
				"type":    "number",
				"minimum": 1,
				"default": 30000,
			},
			"retries": map[string]any{
				"type":    "number",
				"minimum": 1,
				"default": 1,
			},
		},
	}
}

func (f *Factory) Create(id string, config map[string]any) (protocol.NodeExecutor, error) {
	return NewNode(id, config)
}
