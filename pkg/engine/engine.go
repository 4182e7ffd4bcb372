// Package engine runs workflow graphs: it dispatches nodes as their
// dependencies settle, resolves conditional branches, drives loop bodies, and
// produces the execution record with its per-node trace.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rolerabbit/rabbitflow/pkg/graph"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/otelhelper"
	"github.com/rolerabbit/rabbitflow/pkg/registry"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

// DefaultConcurrency bounds how many node executors run in parallel.
const DefaultConcurrency = 8

// ItemsProvider is implemented by loop node executors. The engine resolves
// the item list up front and drives the body subgraph itself; the executor
// never runs its own iterations.
type ItemsProvider interface {
	Items(ctx context.Context, rc *models.RunContext) ([]any, error)
}

// Engine executes workflows against a node registry.
type Engine struct {
	registry    *registry.Registry
	logger      *slog.Logger
	tracer      trace.Tracer
	concurrency int
}

func New(reg *registry.Registry, logger *slog.Logger, tracer trace.Tracer) *Engine {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("engine")
	}

	return &Engine{
		registry:    reg,
		logger:      logger.With("module", "engine"),
		tracer:      tracer,
		concurrency: DefaultConcurrency,
	}
}

// WithConcurrency overrides the worker bound. Values below 1 are ignored.
func (e *Engine) WithConcurrency(n int) *Engine {
	if n >= 1 {
		e.concurrency = n
	}

	return e
}

// Run executes a workflow to a terminal state and returns the execution
// record. The returned error is nil for a completed run, ErrRunCancelled for
// a cancelled one, and the failing node's error otherwise; in every case the
// execution carries the full partial trace.
func (e *Engine) Run(
	ctx context.Context,
	workflow *models.Workflow,
	executionID string,
	triggeredBy string,
	triggerData map[string]any,
) (*models.Execution, error) {
	startedAt := time.Now().UTC()

	execution := &models.Execution{
		ID:          executionID,
		WorkflowID:  workflow.ID,
		Status:      models.ExecutionStatusRunning,
		TriggeredBy: triggeredBy,
		StartedAt:   startedAt,
	}

	logger := e.logger.With("workflow_id", workflow.ID, "execution_id", executionID)
	logger.InfoContext(ctx, "starting execution", "triggered_by", triggeredBy)

	g := graph.New(workflow, e.registry)
	rc := models.NewRunContext(executionID, workflow.ID, workflow.Variables, triggerData)

	r := &runner{
		engine: e,
		graph:  g,
		logger: logger,
		sem:    make(chan struct{}, e.concurrency),
		trace:  make(map[string]*models.NodeTrace),
	}

	base := make(map[string]bool, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		base[node.ID] = true
	}

	r.run(ctx, rc, r.scopeOf(base))

	completedAt := time.Now().UTC()
	execution.CompletedAt = &completedAt
	execution.DurationMs = completedAt.Sub(startedAt).Milliseconds()
	execution.Trace = r.trace

	var runErr error

	switch {
	case ctx.Err() != nil:
		execution.Status = models.ExecutionStatusCancelled
		execution.Error = ErrRunCancelled.Error()
		runErr = ErrRunCancelled
	case r.failure != nil:
		execution.Status = models.ExecutionStatusFailed
		execution.Error = r.failure.Error()
		runErr = r.failure
	default:
		execution.Status = models.ExecutionStatusCompleted
	}

	logger.InfoContext(ctx, "execution finished",
		"status", execution.Status,
		"duration_ms", execution.DurationMs)

	return execution, runErr
}

// runner holds the state shared between the outer run and its loop sub-runs.
type runner struct {
	engine *Engine
	graph  *graph.Graph
	logger *slog.Logger
	sem    chan struct{}

	mu      sync.Mutex
	trace   map[string]*models.NodeTrace
	failure error
	stopped bool
}

// nodeState tracks one node's unsettled incoming edges within a scope.
type nodeState struct {
	node      *models.WorkflowNode
	remaining int
	fired     int
	settled   bool
}

// schedule is the dispatch bookkeeping for one scope (the outer graph or one
// loop body iteration).
type schedule struct {
	scope  map[string]bool
	states map[string]*nodeState
	wg     sync.WaitGroup
}

// scopeOf removes every loop body subgraph from base: body nodes only run
// inside their loop's sub-runs, never as part of the enclosing scope.
func (r *runner) scopeOf(base map[string]bool) map[string]bool {
	scope := make(map[string]bool, len(base))
	for id := range base {
		scope[id] = true
	}

	for id := range base {
		node := r.graph.Workflow().NodeByID(id)
		if node == nil {
			continue
		}

		if category, ok := r.engine.registry.Category(node.Type); ok && category == models.CategoryTypeLoop {
			for member := range r.graph.BodySubgraph(id) {
				delete(scope, member)
			}
		}
	}

	return scope
}

// run executes every node in scope and blocks until all dispatched work has
// drained. Nodes with no in-scope incoming edges start immediately.
func (r *runner) run(ctx context.Context, rc *models.RunContext, scope map[string]bool) {
	s := &schedule{
		scope:  scope,
		states: make(map[string]*nodeState, len(scope)),
	}

	for id := range scope {
		node := r.graph.Workflow().NodeByID(id)
		if node == nil {
			continue
		}

		remaining := 0

		for _, connection := range r.graph.Incoming(id) {
			if scope[connection.Source] {
				remaining++
			}
		}

		s.states[id] = &nodeState{node: node, remaining: remaining}
	}

	r.mu.Lock()
	for _, st := range s.states {
		if st.remaining == 0 && !r.stopped {
			st.settled = true
			s.launch(ctx, r, rc, st.node)
		}
	}
	r.mu.Unlock()

	s.wg.Wait()
}

func (s *schedule) launch(ctx context.Context, r *runner, rc *models.RunContext, node *models.WorkflowNode) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		r.executeNode(ctx, s, rc, node)
	}()
}

// settleEdge marks one incoming edge of target as fired or skipped. When the
// last edge settles, the node either dispatches (at least one fired) or is
// skipped, propagating the skip down its own outgoing edges.
func (r *runner) settleEdge(ctx context.Context, s *schedule, rc *models.RunContext, targetID string, fired bool) {
	r.mu.Lock()

	st, ok := s.states[targetID]
	if !ok || st.settled {
		r.mu.Unlock()

		return
	}

	st.remaining--

	if fired {
		st.fired++
	}

	if st.remaining > 0 {
		r.mu.Unlock()

		return
	}

	st.settled = true

	if st.fired > 0 {
		stopped := r.stopped || ctx.Err() != nil
		if !stopped {
			s.launch(ctx, r, rc, st.node)
		}

		r.mu.Unlock()

		return
	}

	r.mu.Unlock()

	r.recordSkip(targetID)

	for _, connection := range r.graph.Outgoing(targetID) {
		r.settleEdge(ctx, s, rc, connection.Target, false)
	}
}

func (r *runner) executeNode(ctx context.Context, s *schedule, rc *models.RunContext, node *models.WorkflowNode) {
	ctx, span := otelhelper.StartSpan(ctx, r.engine.tracer, "node.execute",
		attribute.String(otelhelper.WorkflowIDKey, rc.WorkflowID),
		attribute.String(otelhelper.ExecutionIDKey, rc.ExecutionID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, node.Type),
	)
	defer span.End()

	r.recordStart(node.ID)

	result, err := r.invoke(ctx, rc, node)
	if err != nil {
		otelhelper.SetError(span, err)
		r.recordFailure(node.ID, err)

		if ctx.Err() != nil {
			r.stop(nil)

			return
		}

		r.stop(NewNodeExecutionError(node.ID, node.Type, err))
		r.logger.ErrorContext(ctx, "node failed", "node_id", node.ID, "node_type", node.Type, "error", err)

		return
	}

	if err := rc.SetOutput(node.ContextKey(), result.Output); err != nil {
		otelhelper.SetError(span, err)
		r.recordFailure(node.ID, err)
		r.stop(NewNodeExecutionError(node.ID, node.Type, err))

		return
	}

	r.recordSuccess(node.ID, result.Output)
	r.logger.DebugContext(ctx, "node succeeded", "node_id", node.ID, "handle", result.Handle)

	firedIDs := make(map[string]bool)
	for _, connection := range r.graph.NextConnections(node, result) {
		firedIDs[connection.ID] = true
	}

	for _, connection := range r.graph.Outgoing(node.ID) {
		r.settleEdge(ctx, s, rc, connection.Target, firedIDs[connection.ID])
	}
}

// invoke interpolates the node config, builds the executor, and runs it.
// Loop nodes are driven here instead of delegating iteration to the executor.
func (r *runner) invoke(ctx context.Context, rc *models.RunContext, node *models.WorkflowNode) (*models.NodeResult, error) {
	config, err := template.RenderConfig(node.Config, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}

	executor, err := r.engine.registry.Create(node.Type, node.ID, config)
	if err != nil {
		return nil, err
	}

	if category, ok := r.engine.registry.Category(node.Type); ok && category == models.CategoryTypeLoop {
		provider, ok := executor.(ItemsProvider)
		if !ok {
			return nil, fmt.Errorf("loop node %s does not provide items", node.ID)
		}

		return r.runLoop(ctx, rc, node, provider)
	}

	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-r.sem }()

	return executor.Execute(ctx, rc)
}

// runLoop resolves the item list and runs the body subgraph once per item in
// an isolated child context, merging each iteration's outputs into the loop
// node's result before the done handle fires.
func (r *runner) runLoop(ctx context.Context, rc *models.RunContext, node *models.WorkflowNode, provider ItemsProvider) (*models.NodeResult, error) {
	items, err := provider.Items(ctx, rc)
	if err != nil {
		return nil, err
	}

	bodyScope := r.scopeOf(r.graph.BodySubgraph(node.ID))
	iterations := make([]any, 0, len(items))

	for index, item := range items {
		if r.isStopped(ctx) {
			break
		}

		child := rc.Child(item, index)
		base := child.Snapshot()

		r.run(ctx, child, bodyScope)

		if failure := r.currentFailure(); failure != nil {
			return nil, fmt.Errorf("iteration %d: %w", index, failure)
		}

		iterations = append(iterations, child.NewKeysSince(base))
	}

	return &models.NodeResult{
		NodeID: node.ID,
		Handle: models.HandleDone,
		Output: map[string]any{
			"iterations": iterations,
			"count":      len(iterations),
		},
	}, nil
}

// stop halts new dispatch. A nil error stops without marking failure, used
// when the run context is cancelled.
func (r *runner) stop(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true

	if err != nil && r.failure == nil {
		r.failure = err
	}
}

func (r *runner) isStopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stopped
}

func (r *runner) currentFailure() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.failure
}

func (r *runner) recordStart(nodeID string) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.trace[nodeID] = &models.NodeTrace{
		Status:    models.NodeStatusRunning,
		StartedAt: &now,
	}
}

func (r *runner) recordSuccess(nodeID string, output map[string]any) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.trace[nodeID]; ok {
		entry.Status = models.NodeStatusSucceeded
		entry.Output = output
		entry.CompletedAt = &now
	}
}

func (r *runner) recordFailure(nodeID string, err error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.trace[nodeID]; ok {
		entry.Status = models.NodeStatusFailed
		entry.Error = err.Error()
		entry.CompletedAt = &now
	}
}

func (r *runner) recordSkip(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trace[nodeID]; !ok {
		r.trace[nodeID] = &models.NodeTrace{Status: models.NodeStatusSkipped}
	}
}
