// Package loop provides the LOOP_FOR_EACH node. The executor resolves the
// items array; the engine drives the per-item iteration of the body subgraph.
package loop

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

// ErrLoopBounds indicates the items path resolved to a non-array or to an
// array larger than the configured bound.
var ErrLoopBounds = errors.New("loop bounds error")

// DefaultMaxItems bounds iteration when the config does not set max_items.
// Configs may lower it but never raise it past this cap.
const DefaultMaxItems = 1000

// Node implements LOOP_FOR_EACH.
type Node struct {
	id        string
	itemsPath string
	maxItems  int
}

// NewNode creates a loop node from its config.
func NewNode(id string, config map[string]any) (*Node, error) {
	itemsPath, ok := config["items_path"].(string)
	if !ok || itemsPath == "" {
		return nil, errors.New("missing required field 'items_path'")
	}

	maxItems := DefaultMaxItems
	if raw, ok := config["max_items"].(float64); ok && raw > 0 && int(raw) < DefaultMaxItems {
		maxItems = int(raw)
	}

	return &Node{id: id, itemsPath: itemsPath, maxItems: maxItems}, nil
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return models.NodeTypeLoopForEach
}

// Items resolves the configured path against the run context and enforces the
// iteration bound.
func (n *Node) Items(_ context.Context, rc *models.RunContext) ([]any, error) {
	resolved := template.Resolve(n.itemsPath, rc)

	items, ok := resolved.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q resolved to %T, want array", ErrLoopBounds, n.itemsPath, resolved)
	}

	if len(items) > n.maxItems {
		return nil, fmt.Errorf("%w: %d items exceeds bound of %d", ErrLoopBounds, len(items), n.maxItems)
	}

	return items, nil
}

// Execute resolves the items without entering the body; the engine calls
// Items and runs the body subgraph per element. Standalone execution (the
// node test harness) reports what would be iterated.
func (n *Node) Execute(ctx context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	items, err := n.Items(ctx, rc)
	if err != nil {
		return nil, err
	}

	return &models.NodeResult{
		NodeID: n.id,
		Output: map[string]any{
			"items": items,
			"count": len(items),
		},
	}, nil
}
