// Package lognode provides the LOG node.
package lognode

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

// Node implements LOG. The rendered message is written to the structured
// logger and echoed in the node output so downstream nodes can observe it.
type Node struct {
	id      string
	message string
	level   slog.Level
	logger  *slog.Logger
}

func NewNode(id string, config map[string]any) (*Node, error) {
	message, ok := config["message"].(string)
	if !ok || message == "" {
		return nil, errors.New("missing required field 'message'")
	}

	level := slog.LevelInfo

	if name, ok := config["level"].(string); ok {
		switch name {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			return nil, errors.New("invalid level, expected one of debug, info, warn, error")
		}
	}

	return &Node{
		id:      id,
		message: message,
		level:   level,
		logger:  slog.Default().With("module", "lognode", "node_id", id),
	}, nil
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return models.NodeTypeLog
}

func (n *Node) Execute(ctx context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	message, err := template.RenderString(n.message, rc)
	if err != nil {
		return nil, err
	}

	n.logger.Log(ctx, n.level, message,
		"execution_id", rc.ExecutionID,
		"workflow_id", rc.WorkflowID)

	return &models.NodeResult{
		NodeID: n.id,
		Output: map[string]any{
			"message": message,
			"level":   n.level.String(),
		},
	}, nil
}
