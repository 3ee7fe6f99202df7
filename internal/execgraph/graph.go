// Package execgraph runs the custom-node subgraph of a compiled workflow:
// layered topological execution with per-node caching, mirroring the
// original graph_executor.py's sink-detection -> backward-trace ->
// Kahn's-algorithm-layering -> per-layer concurrent dispatch pipeline (spec
// section 4.10), using the teacher's errgroup-based fan-out idiom
// (pkg/agent/workflowagent/parallel.go) for the concurrent layer dispatch.
package execgraph

import "github.com/kadirpekel/adkflow/internal/compiler/ir"

// Node is one schedulable unit: a CustomNodeIR plus the agent nodes that
// feed or consume it. Agent nodes are represented here only as edge
// endpoints -- they are driven externally by the workflow runner and never
// scheduled by this package (spec 9's "agents run externally" decision).
type Node struct {
	ID            string
	CustomNode    *ir.CustomNodeIR // nil for agent placeholder nodes
	IsAgent       bool
	OutputNode    bool
	AlwaysExecute bool
}

// Edge connects one node's output port to another's input port.
type Edge struct {
	SourceID   string
	SourcePort string
	TargetID   string
	TargetPort string
}

// Graph is the schedulable view built from a WorkflowIR's custom nodes.
type Graph struct {
	Nodes map[string]*Node
	Edges []Edge

	in  map[string][]Edge
	out map[string][]Edge
}

// Build constructs a Graph from every custom node and context aggregator in
// w, plus placeholder agent nodes for any connection endpoint that is an
// agent (so dependency tracing can cross through them without executing
// them).
func Build(w *ir.WorkflowIR) *Graph {
	g := &Graph{
		Nodes: map[string]*Node{},
		in:    map[string][]Edge{},
		out:   map[string][]Edge{},
	}

	addCustom := func(cn *ir.CustomNodeIR) {
		g.Nodes[cn.ID] = &Node{ID: cn.ID, CustomNode: cn, OutputNode: cn.OutputNode, AlwaysExecute: cn.AlwaysExecute}
	}
	for _, cn := range w.CustomNodes {
		addCustom(cn)
	}
	for _, cn := range w.ContextAggregators {
		addCustom(cn)
	}

	ensureAgentPlaceholder := func(id string) {
		if _, ok := g.Nodes[id]; !ok {
			if _, isAgent := w.AllAgents[id]; isAgent {
				g.Nodes[id] = &Node{ID: id, IsAgent: true}
			}
		}
	}

	for _, n := range g.Nodes {
		if n.CustomNode == nil {
			continue
		}
		for port, sources := range n.CustomNode.InputConnections {
			for _, src := range sources {
				ensureAgentPlaceholder(src.NodeID)
				e := Edge{SourceID: src.NodeID, SourcePort: src.Handle, TargetID: n.ID, TargetPort: port}
				g.Edges = append(g.Edges, e)
			}
		}
		for port, targets := range n.CustomNode.OutputConnections {
			for _, tgt := range targets {
				ensureAgentPlaceholder(tgt)
				e := Edge{SourceID: n.ID, SourcePort: port, TargetID: tgt, TargetPort: ""}
				g.Edges = append(g.Edges, e)
			}
		}
	}

	for _, e := range g.Edges {
		g.in[e.TargetID] = append(g.in[e.TargetID], e)
		g.out[e.SourceID] = append(g.out[e.SourceID], e)
	}
	return g
}

func (g *Graph) EdgesIn(id string) []Edge  { return g.in[id] }
func (g *Graph) EdgesOut(id string) []Edge { return g.out[id] }

// Sinks returns every custom node that is either flagged OutputNode or has
// no outgoing edges (spec 4.10's output-node detection).
func (g *Graph) Sinks() []string {
	var sinks []string
	for id, n := range g.Nodes {
		if n.IsAgent {
			continue
		}
		if n.OutputNode || len(g.out[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// TraceDependencies performs a backward BFS from roots over the reverse
// edge map, returning every node (including the roots) reachable by walking
// inputs backward.
func (g *Graph) TraceDependencies(roots []string) map[string]bool {
	visited := map[string]bool{}
	queue := append([]string{}, roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		for _, e := range g.in[id] {
			if !visited[e.SourceID] {
				queue = append(queue, e.SourceID)
			}
		}
	}
	return visited
}
