package graph

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// Validate checks the whole-graph invariants: every node type is registered,
// every connection references existing nodes with consistent handles, the
// graph is acyclic, non-trigger nodes are reachable, and the workflow's
// trigger type is backed by the right trigger node. The returned list is
// deterministic, so re-validating an unmodified graph yields the same errors.
func (g *Graph) Validate() []GraphError {
	var errs []GraphError

	nodeIDs := make(map[string]bool, len(g.workflow.Nodes))
	contextKeys := make(map[string]string, len(g.workflow.Nodes))

	for _, node := range g.workflow.Nodes {
		nodeIDs[node.ID] = true

		if !g.catalog.Known(node.Type) {
			errs = append(errs, GraphError{
				Code:    CodeInvalidNodeType,
				NodeID:  node.ID,
				Message: fmt.Sprintf("type %q is not registered", node.Type),
			})
		}

		// Context keys must be unique: the run context is append-only, so a
		// second node writing the same key would fail at runtime.
		key := node.ContextKey()
		if other, taken := contextKeys[key]; taken {
			errs = append(errs, GraphError{
				Code:    CodeDuplicateContextKey,
				NodeID:  node.ID,
				Message: fmt.Sprintf("context key %q already used by node %s", key, other),
			})
		} else {
			contextKeys[key] = node.ID
		}
	}

	errs = append(errs, g.validateConnections(nodeIDs)...)
	errs = append(errs, g.validateAcyclic()...)
	errs = append(errs, g.validateOrphans()...)
	errs = append(errs, g.validateTriggerRequirements()...)

	return errs
}

func (g *Graph) validateConnections(nodeIDs map[string]bool) []GraphError {
	var errs []GraphError

	handleBindings := make(map[string]string) // "source\x00handle" -> connection ID

	for _, connection := range g.workflow.Connections {
		if !nodeIDs[connection.Source] {
			errs = append(errs, GraphError{
				Code:         CodeUnknownNodeReference,
				ConnectionID: connection.ID,
				Message:      fmt.Sprintf("source node %q does not exist", connection.Source),
			})
		}

		if !nodeIDs[connection.Target] {
			errs = append(errs, GraphError{
				Code:         CodeUnknownNodeReference,
				ConnectionID: connection.ID,
				Message:      fmt.Sprintf("target node %q does not exist", connection.Target),
			})
		}

		if !connection.ConditionConsistent() {
			errs = append(errs, GraphError{
				Code:         CodeInconsistentCondition,
				ConnectionID: connection.ID,
				Message:      fmt.Sprintf("condition does not mirror source handle %q", connection.SourceHandle),
			})
		}

		sourceNode := g.workflow.NodeByID(connection.Source)
		if sourceNode == nil || !g.isBranching(sourceNode) {
			continue
		}

		if connection.SourceHandle == "" {
			errs = append(errs, GraphError{
				Code:         CodeMissingSourceHandle,
				ConnectionID: connection.ID,
				Message:      fmt.Sprintf("%s connections require a source handle", sourceNode.Type),
			})

			continue
		}

		key := connection.Source + "\x00" + connection.SourceHandle
		if other, bound := handleBindings[key]; bound {
			errs = append(errs, GraphError{
				Code:         CodeDuplicateHandleBinding,
				ConnectionID: connection.ID,
				Message:      fmt.Sprintf("handle %q already bound by connection %s", connection.SourceHandle, other),
			})
		} else {
			handleBindings[key] = connection.ID
		}
	}

	return errs
}

// validateAcyclic runs a three-color DFS over the connection graph. Loop
// iteration is an engine construct with no back-edges, so the whole graph,
// loop bodies included, must be a DAG.
func (g *Graph) validateAcyclic() []GraphError {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.workflow.Nodes))

	adjacency := make(map[string][]string)
	for _, connection := range g.workflow.Connections {
		adjacency[connection.Source] = append(adjacency[connection.Source], connection.Target)
	}

	var cycleNode string

	var visit func(id string) bool

	visit = func(id string) bool {
		color[id] = gray

		for _, next := range adjacency[id] {
			switch color[next] {
			case gray:
				cycleNode = next

				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}

		color[id] = black

		return false
	}

	for _, node := range g.workflow.Nodes {
		if color[node.ID] == white && visit(node.ID) {
			return []GraphError{{
				Code:    CodeGraphCycle,
				NodeID:  cycleNode,
				Message: "workflow graph contains a cycle",
			}}
		}
	}

	return nil
}

func (g *Graph) validateOrphans() []GraphError {
	var errs []GraphError

	hasIncoming := make(map[string]bool)
	for _, connection := range g.workflow.Connections {
		hasIncoming[connection.Target] = true
	}

	for _, node := range g.workflow.Nodes {
		category, ok := g.catalog.Category(node.Type)
		if ok && category == models.CategoryTypeTrigger {
			continue
		}

		if !hasIncoming[node.ID] {
			errs = append(errs, GraphError{
				Code:    CodeOrphanNode,
				NodeID:  node.ID,
				Message: "node has no incoming connection and is not a trigger",
			})
		}
	}

	return errs
}

func (g *Graph) validateTriggerRequirements() []GraphError {
	var errs []GraphError

	switch g.workflow.TriggerType {
	case models.TriggerTypeSchedule:
		scheduleNodes := g.nodesOfType(models.NodeTypeTriggerSchedule)
		if len(scheduleNodes) != 1 {
			errs = append(errs, GraphError{
				Code:    CodeMissingTrigger,
				Message: fmt.Sprintf("schedule workflows require exactly one schedule trigger node, found %d", len(scheduleNodes)),
			})

			break
		}

		errs = append(errs, validateScheduleConfig(scheduleNodes[0])...)
	case models.TriggerTypeWebhook:
		if len(g.nodesOfType(models.NodeTypeTriggerWebhook)) == 0 {
			errs = append(errs, GraphError{
				Code:    CodeMissingTrigger,
				Message: "webhook workflows require a webhook trigger node",
			})
		}
	case models.TriggerTypeManual, models.TriggerTypeEvent:
		if len(g.TriggerNodes()) == 0 {
			errs = append(errs, GraphError{
				Code:    CodeMissingTrigger,
				Message: "workflow has no trigger node",
			})
		}
	}

	return errs
}

func validateScheduleConfig(node *models.WorkflowNode) []GraphError {
	var errs []GraphError

	expr, _ := node.Config["cron"].(string)

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		errs = append(errs, GraphError{
			Code:    CodeInvalidCron,
			NodeID:  node.ID,
			Message: fmt.Sprintf("invalid cron expression %q: %v", expr, err),
		})
	}

	timezone, _ := node.Config["timezone"].(string)
	if timezone == "" {
		timezone = "UTC"
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		errs = append(errs, GraphError{
			Code:    CodeInvalidTimezone,
			NodeID:  node.ID,
			Message: fmt.Sprintf("invalid timezone %q", timezone),
		})
	}

	return errs
}

func (g *Graph) nodesOfType(nodeType string) []*models.WorkflowNode {
	var matched []*models.WorkflowNode

	for _, node := range g.workflow.Nodes {
		if node.Type == nodeType {
			matched = append(matched, node)
		}
	}

	return matched
}
