package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// NodeCatalog is the registry view the graph model needs: whether a type
// exists and which category it belongs to.
type NodeCatalog interface {
	Known(nodeType string) bool
	Category(nodeType string) (models.CategoryType, bool)
}

// Graph wraps a workflow's node/connection structure with the mutation
// operations the editor and engine use. All mutations preserve the structural
// invariants they can check locally; Validate covers the whole-graph ones.
type Graph struct {
	workflow *models.Workflow
	catalog  NodeCatalog
}

// New wraps an existing workflow.
func New(workflow *models.Workflow, catalog NodeCatalog) *Graph {
	return &Graph{workflow: workflow, catalog: catalog}
}

// Workflow returns the underlying workflow.
func (g *Graph) Workflow() *models.Workflow {
	return g.workflow
}

// AddNode creates a node of the given registry type at a canvas position.
func (g *Graph) AddNode(nodeType string, position models.Position, config map[string]any) (*models.WorkflowNode, error) {
	if !g.catalog.Known(nodeType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidNodeType, nodeType)
	}

	if config == nil {
		config = make(map[string]any)
	}

	node := &models.WorkflowNode{
		ID:       uuid.New().String(),
		Type:     nodeType,
		Position: position,
		Config:   config,
	}

	g.workflow.Nodes = append(g.workflow.Nodes, node)

	return node, nil
}

// AddConnection links source to target. Branching sources must name a handle,
// and each handle of a branching source may carry at most one outgoing
// connection; fan-out through one handle is rejected here as an explicit
// policy, not silently reconciled. Non-branching sources fan out freely.
func (g *Graph) AddConnection(source, target, sourceHandle, targetHandle string) (*models.Connection, error) {
	sourceNode := g.workflow.NodeByID(source)
	if sourceNode == nil {
		return nil, fmt.Errorf("%w: source %s", ErrUnknownNodeReference, source)
	}

	if g.workflow.NodeByID(target) == nil {
		return nil, fmt.Errorf("%w: target %s", ErrUnknownNodeReference, target)
	}

	if g.isBranching(sourceNode) {
		if sourceHandle == "" {
			return nil, fmt.Errorf("%w: %s requires a source handle", ErrMissingSourceHandle, sourceNode.Type)
		}

		for _, existing := range g.workflow.Connections {
			if existing.Source == source && existing.SourceHandle == sourceHandle {
				return nil, fmt.Errorf("%w: %s handle %q already connected", ErrDuplicateHandleBinding, source, sourceHandle)
			}
		}
	}

	connection := &models.Connection{
		ID:           uuid.New().String(),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	connection.Normalize()

	g.workflow.Connections = append(g.workflow.Connections, connection)

	return connection, nil
}

// RemoveNode deletes a node and cascades removal of every connection that
// references it.
func (g *Graph) RemoveNode(id string) error {
	found := false

	nodes := g.workflow.Nodes[:0]
	for _, node := range g.workflow.Nodes {
		if node.ID == id {
			found = true

			continue
		}

		nodes = append(nodes, node)
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownNodeReference, id)
	}

	g.workflow.Nodes = nodes

	connections := g.workflow.Connections[:0]
	for _, connection := range g.workflow.Connections {
		if connection.Source == id || connection.Target == id {
			continue
		}

		connections = append(connections, connection)
	}

	g.workflow.Connections = connections

	return nil
}

// RemoveConnection deletes a single connection by ID.
func (g *Graph) RemoveConnection(id string) error {
	for i, connection := range g.workflow.Connections {
		if connection.ID == id {
			g.workflow.Connections = append(g.workflow.Connections[:i], g.workflow.Connections[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: connection %s", ErrUnknownNodeReference, id)
}

// Outgoing returns all connections whose source is the given node.
func (g *Graph) Outgoing(nodeID string) []*models.Connection {
	var out []*models.Connection

	for _, connection := range g.workflow.Connections {
		if connection.Source == nodeID {
			out = append(out, connection)
		}
	}

	return out
}

// Incoming returns all connections whose target is the given node.
func (g *Graph) Incoming(nodeID string) []*models.Connection {
	var in []*models.Connection

	for _, connection := range g.workflow.Connections {
		if connection.Target == nodeID {
			in = append(in, connection)
		}
	}

	return in
}

// TriggerNodes returns the nodes whose type category is trigger.
func (g *Graph) TriggerNodes() []*models.WorkflowNode {
	var triggers []*models.WorkflowNode

	for _, node := range g.workflow.Nodes {
		if category, ok := g.catalog.Category(node.Type); ok && category == models.CategoryTypeTrigger {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// BodySubgraph returns the node IDs reachable through a loop node's body
// handle. The engine runs this set once per loop item; the outer acyclicity
// check treats it like any other subgraph since loops carry no back-edges.
func (g *Graph) BodySubgraph(loopNodeID string) map[string]bool {
	reachable := make(map[string]bool)

	var frontier []string

	for _, connection := range g.Outgoing(loopNodeID) {
		if connection.SourceHandle == models.HandleBody {
			frontier = append(frontier, connection.Target)
		}
	}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		if reachable[current] {
			continue
		}

		reachable[current] = true

		for _, connection := range g.Outgoing(current) {
			frontier = append(frontier, connection.Target)
		}
	}

	return reachable
}

func (g *Graph) isBranching(node *models.WorkflowNode) bool {
	category, ok := g.catalog.Category(node.Type)

	return ok && category == models.CategoryTypeCondition
}
