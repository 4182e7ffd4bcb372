package trigger

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
)

type factory struct {
	nodeType    string
	name        string
	description string
	schema      map[string]any
}

func (f *factory) Type() string                  { return f.nodeType }
func (f *factory) Name() string                  { return f.name }
func (f *factory) Description() string           { return f.description }
func (f *factory) Category() models.CategoryType { return models.CategoryTypeTrigger }
func (f *factory) Schema() map[string]any        { return f.schema }

func (f *factory) Create(id string, _ map[string]any) (protocol.NodeExecutor, error) {
	return &Node{id: id, nodeType: f.nodeType}, nil
}

// NewManualFactory creates the manual trigger node factory. Manual runs carry
// whatever payload the caller supplied on the execute request.
func NewManualFactory() protocol.NodeFactory {
	return &factory{
		nodeType:    models.NodeTypeTriggerManual,
		name:        "Manual Trigger",
		description: "Starts the workflow when the user runs it from the editor",
		schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

// NewScheduleFactory creates the schedule trigger node factory. The cron
// expression and timezone are validated at graph save time.
func NewScheduleFactory() protocol.NodeFactory {
	return &factory{
		nodeType:    models.NodeTypeTriggerSchedule,
		name:        "Schedule Trigger",
		description: "Starts the workflow on a cron schedule",
		schema: map[string]any{
			"type":     "object",
			"required": []any{"cron"},
			"properties": map[string]any{
				"cron":     map[string]any{"type": "string", "description": "5-field cron expression"},
				"timezone": map[string]any{"type": "string", "description": "IANA timezone, defaults to UTC"},
			},
		},
	}
}

// NewWebhookFactory creates the webhook trigger node factory.
func NewWebhookFactory() protocol.NodeFactory {
	return &factory{
		nodeType:    models.NodeTypeTriggerWebhook,
		name:        "Webhook Trigger",
		description: "Starts the workflow when the webhook endpoint receives a request",
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"secret": map[string]any{"type": "string", "description": "Optional shared secret the caller must present"},
			},
		},
	}
}

// NewEventFactory creates the event trigger node factory.
func NewEventFactory() protocol.NodeFactory {
	return &factory{
		nodeType:    models.NodeTypeTriggerEvent,
		name:        "Event Trigger",
		description: "Starts the workflow when a matching application event arrives on the event bus",
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"event_type": map[string]any{"type": "string", "description": "Application event type to match"},
			},
		},
	}
}
