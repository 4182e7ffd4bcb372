package graph

import "github.com/rolerabbit/rabbitflow/pkg/models"

// NextConnections applies the branch resolution rules to a completed node:
// branching nodes fire only the connections matching the handle the executor
// selected; loop nodes fire their done-handle connections once iteration has
// finished; every other node fires all outgoing connections (fan-out). An
// empty result is a normal branch termination, not an error. When several
// connections share the matching handle, all fire and their relative
// execution order is unspecified.
func (g *Graph) NextConnections(node *models.WorkflowNode, result *models.NodeResult) []*models.Connection {
	outgoing := g.Outgoing(node.ID)

	category, ok := g.catalog.Category(node.Type)
	if !ok {
		return nil
	}

	switch category {
	case models.CategoryTypeCondition:
		return filterByHandle(outgoing, result.Handle)
	case models.CategoryTypeLoop:
		return filterByHandle(outgoing, models.HandleDone)
	default:
		return outgoing
	}
}

func filterByHandle(connections []*models.Connection, handle string) []*models.Connection {
	var matched []*models.Connection

	for _, connection := range connections {
		if connection.SourceHandle == handle {
			matched = append(matched, connection)
		}
	}

	return matched
}
