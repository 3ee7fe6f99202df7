package execgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/adkflow/internal/hook"
	"github.com/kadirpekel/adkflow/pkg/flowunit"
)

// NodeErr is returned by Execute, and also passed to the on_node_error hook,
// when a unit's Run fails.
type NodeErr struct {
	NodeID string
	Err    error
}

func (e *NodeErr) Error() string { return fmt.Sprintf("node %s: %v", e.NodeID, e.Err) }
func (e *NodeErr) Unwrap() error { return e.Err }

// UnitResolver looks up the live flowunit.Unit for a CustomNodeIR's UnitID.
type UnitResolver interface {
	GetUnit(unitID string) (flowunit.Unit, bool)
}

// Executor runs the layered subgraph, dispatching each layer's nodes
// concurrently via errgroup (the same fan-out idiom as
// pkg/agent/workflowagent/parallel.go) and consulting the hook chain at the
// plan, layer, and node granularities described in spec 4.10.
type Executor struct {
	Graph *Graph
	Units UnitResolver
	Cache *Cache
	Hooks *hook.Registry
	RunID string
}

// Execute resolves the nodes needed to satisfy every sink (or an explicit
// target set), layers them, and runs each layer to completion before moving
// to the next. externalResults seeds inputs coming from agent nodes (the
// workflow runner populates this with each agent's final output keyed by
// agent id before invoking Execute for any post-agent custom-node pass).
func (ex *Executor) Execute(ctx context.Context, targets []string, externalResults map[string]map[string]any) (map[string]map[string]any, error) {
	if len(targets) == 0 {
		targets = ex.Graph.Sinks()
	}
	subset := ex.Graph.TraceDependencies(targets)

	hexec := hook.NewExecutor(ex.Hooks)
	planCtx := &hook.Context{HookName: "on_execution_plan", RunID: ex.RunID}
	planResult, _ := hexec.Execute(ctx, planCtx, map[string]any{"targets": targets})
	if planResult.Action == hook.ActionAbort {
		return nil, fmt.Errorf("execution plan aborted: %w", planResult.Err)
	}
	if planResult.Action == hook.ActionSkip {
		return map[string]map[string]any{}, nil
	}

	layers, err := ex.Graph.TopologicalLayers(subset)
	if err != nil {
		return nil, err
	}

	results := map[string]map[string]any{}
	for k, v := range externalResults {
		results[k] = v
	}

	for i, layer := range layers {
		nodeIDs := filterCustomNodes(ex.Graph, layer)
		if len(nodeIDs) == 0 {
			continue
		}

		layerCtx := &hook.Context{HookName: "before_layer_execute", RunID: ex.RunID}
		verdict, data := hexec.Execute(ctx, layerCtx, map[string]any{"layer": i, "nodes": nodeIDs})
		switch verdict.Action {
		case hook.ActionAbort:
			return nil, fmt.Errorf("layer %d aborted: %w", i, verdict.Err)
		case hook.ActionSkip:
			continue
		case hook.ActionReplace:
			if replaced, ok := data["nodes"].([]string); ok {
				nodeIDs = replaced
			}
		}

		layerResults, err := ex.runLayer(ctx, nodeIDs, results)
		if err != nil {
			return nil, err
		}
		for id, out := range layerResults {
			results[id] = out
		}

		afterCtx := &hook.Context{HookName: "after_layer_execute", RunID: ex.RunID}
		hexec.Execute(ctx, afterCtx, map[string]any{"layer": i, "results": layerResults})
	}

	return results, nil
}

func filterCustomNodes(g *Graph, layer []string) []string {
	var out []string
	for _, id := range layer {
		if n := g.Nodes[id]; n != nil && !n.IsAgent {
			out = append(out, id)
		}
	}
	return out
}

// runLayer executes every node in nodeIDs concurrently, returning as soon as
// all have either produced a result or one has failed.
func (ex *Executor) runLayer(ctx context.Context, nodeIDs []string, priorResults map[string]map[string]any) (map[string]map[string]any, error) {
	results := make(map[string]map[string]any, len(nodeIDs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, id := range nodeIDs {
		id := id
		g.Go(func() error {
			out, err := ex.runNode(gctx, id, priorResults)
			if err != nil {
				return &NodeErr{NodeID: id, Err: err}
			}
			mu.Lock()
			results[id] = out
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var nerr *NodeErr
		if errors.As(err, &nerr) {
			hexec := hook.NewExecutor(ex.Hooks)
			hexec.Execute(ctx, &hook.Context{HookName: "on_node_error", RunID: ex.RunID, NodeID: nerr.NodeID}, map[string]any{"error": nerr.Err.Error()})
		}
		return nil, err
	}
	return results, nil
}

func (ex *Executor) runNode(ctx context.Context, nodeID string, priorResults map[string]map[string]any) (map[string]any, error) {
	node := ex.Graph.Nodes[nodeID]
	cn := node.CustomNode

	unit, ok := ex.Units.GetUnit(cn.UnitID)
	if !ok {
		return nil, fmt.Errorf("unit %q not registered", cn.UnitID)
	}

	inputs := ex.resolveInputs(nodeID, priorResults)

	hexec := hook.NewExecutor(ex.Hooks)
	nodeCtx := &hook.Context{HookName: "before_node_execute", RunID: ex.RunID, NodeID: nodeID}
	verdict, data := hexec.Execute(ctx, nodeCtx, map[string]any{"inputs": inputs, "config": cn.Config})
	switch verdict.Action {
	case hook.ActionAbort:
		return nil, verdict.Err
	case hook.ActionSkip:
		return map[string]any{}, nil
	case hook.ActionReplace:
		if outputs, ok := data["outputs"].(map[string]any); ok {
			return outputs, nil
		}
	}

	var isChanged any
	if cd, ok := unit.(flowunit.ChangeDetector); ok {
		isChanged = cd.IsChanged(inputs, cn.Config)
	}
	key := ComputeKey(nodeID, inputs, cn.Config, isChanged)
	if !ex.Cache.ShouldExecute(key, cn.AlwaysExecute, isChanged) {
		if cached, ok := ex.Cache.Get(key); ok {
			return cached, nil
		}
	}

	if validator, ok := unit.(flowunit.ConfigValidator); ok {
		if err := validator.ValidateConfig(cn.Config); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}
	if before, ok := unit.(flowunit.BeforeExecuteHook); ok {
		if err := before.OnBeforeExecute(ctx, inputs, cn.Config); err != nil {
			return nil, err
		}
	}

	outputs, err := unit.Run(ctx, inputs, cn.Config)
	if err != nil {
		return nil, err
	}

	if after, ok := unit.(flowunit.AfterExecuteHook); ok {
		if err := after.OnAfterExecute(ctx, outputs); err != nil {
			return nil, err
		}
	}

	ex.Cache.Put(key, outputs)

	afterCtx := &hook.Context{HookName: "after_node_execute", RunID: ex.RunID, NodeID: nodeID}
	hexec.Execute(ctx, afterCtx, map[string]any{"outputs": outputs})

	return outputs, nil
}

// resolveInputs picks, for each input port, the first connected source's
// value on the matching output port -- falling back to the first value in
// the source's output map when the specific handle is absent, matching the
// original's _resolve_inputs fallback.
func (ex *Executor) resolveInputs(nodeID string, results map[string]map[string]any) map[string]any {
	cn := ex.Graph.Nodes[nodeID].CustomNode
	inputs := map[string]any{}
	for port, sources := range cn.InputConnections {
		if len(sources) == 0 {
			continue
		}
		src := sources[0]
		out, ok := results[src.NodeID]
		if !ok {
			continue
		}
		if v, ok := out[src.Handle]; ok {
			inputs[port] = v
			continue
		}
		for _, v := range out {
			inputs[port] = v
			break
		}
	}
	return inputs
}
