package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
)

// Template instantiates template workflows into owned drafts.
type Template struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewTemplate(p persistence.Persistence, logger *slog.Logger) *Template {
	return &Template{
		persistence: p,
		logger:      logger.With("module", "template_service"),
	}
}

// Instantiate clones a template into a new draft owned by the caller. Every
// node and connection gets a fresh ID; connection endpoints are remapped so
// the clone's graph is self-contained.
func (t *Template) Instantiate(ctx context.Context, templateID, owner, name string) (*models.Workflow, error) {
	template, err := t.persistence.WorkflowRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if !template.IsTemplate {
		return nil, fmt.Errorf("%w: %s", ErrNotATemplate, templateID)
	}

	if name == "" {
		name = template.Name
	}

	clone := &models.Workflow{
		Name:        name,
		Description: template.Description,
		Status:      models.WorkflowStatusDraft,
		TriggerType: template.TriggerType,
		Owner:       owner,
		Variables:   cloneVariables(template.Variables),
	}

	idMap := make(map[string]string, len(template.Nodes))

	for _, node := range template.Nodes {
		cloned := *node
		cloned.ID = uuid.New().String()
		cloned.Config = cloneConfig(node.Config)
		idMap[node.ID] = cloned.ID
		clone.Nodes = append(clone.Nodes, &cloned)
	}

	for _, connection := range template.Connections {
		cloned := *connection
		cloned.ID = uuid.New().String()
		cloned.Source = idMap[connection.Source]
		cloned.Target = idMap[connection.Target]

		if connection.Condition != nil {
			condition := *connection.Condition
			cloned.Condition = &condition
		}

		clone.Connections = append(clone.Connections, &cloned)
	}

	if err := t.persistence.WorkflowRepository().Save(ctx, clone); err != nil {
		return nil, fmt.Errorf("failed to save instantiated workflow: %w", err)
	}

	t.logger.InfoContext(ctx, "template instantiated",
		"template_id", templateID,
		"workflow_id", clone.ID,
		"owner", owner)

	return clone, nil
}

func cloneVariables(variables map[string]any) map[string]any {
	if variables == nil {
		return nil
	}

	return cloneConfig(variables)
}

func cloneConfig(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	copied := make(map[string]any, len(m))

	for key, value := range m {
		switch v := value.(type) {
		case map[string]any:
			copied[key] = cloneConfig(v)
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				if nested, ok := item.(map[string]any); ok {
					items[i] = cloneConfig(nested)
				} else {
					items[i] = item
				}
			}

			copied[key] = items
		default:
			copied[key] = value
		}
	}

	return copied
}
