// Package graph assigns edge semantics and resolves cross-tab teleporter
// links to produce a single WorkflowGraph per project (spec section 4.3).
package graph

import (
	"fmt"

	"github.com/kadirpekel/adkflow/internal/compiler/cerr"
	"github.com/kadirpekel/adkflow/internal/compiler/flow"
)

// EdgeSemantics classifies what an edge means for downstream compilation.
type EdgeSemantics string

const (
	SemanticSequential EdgeSemantics = "sequential" // agent -> agent control flow
	SemanticParallel   EdgeSemantics = "parallel"   // agent -> agent, fan-out sibling
	SemanticData       EdgeSemantics = "data"       // custom node port -> port
	SemanticContext    EdgeSemantics = "context"    // prompt/context/variable -> agent
	SemanticTool       EdgeSemantics = "tool"       // tool -> agent
	SemanticLink       EdgeSemantics = "link"       // synthetic teleporter OUT->IN
)

// GraphNode is a ParsedNode carried forward with its tab of origin retained
// for diagnostics.
type GraphNode struct {
	flow.ParsedNode
}

// GraphEdge is a ParsedEdge with assigned semantics.
type GraphEdge struct {
	flow.ParsedEdge
	Semantics EdgeSemantics
}

// WorkflowGraph is the whole project flattened into one node/edge set with
// teleporter edges spliced in, ready for IR transformation.
type WorkflowGraph struct {
	Nodes map[string]*GraphNode
	Edges []GraphEdge

	outEdges map[string][]GraphEdge
	inEdges  map[string][]GraphEdge

	Teleporters map[string]TeleporterPair
	EntryNodeID string
}

// TeleporterPair links a teleporter-out node to its same-named teleporter-in
// counterpart, possibly in a different tab.
type TeleporterPair struct {
	Name      string
	OutNodeID string
	InNodeID  string
}

const (
	nodeTypeTeleporterOut = "teleporterOut"
	nodeTypeTeleporterIn  = "teleporterIn"
	nodeTypeStart         = "start"
	nodeTypeAgent         = "agent"
)

// Build flattens every tab's ParsedFlow into one WorkflowGraph: classifies
// edge semantics, pairs teleporters by name with synthetic link edges, and
// picks the entry node.
func Build(pp *flow.ParsedProject) (*WorkflowGraph, error) {
	g := &WorkflowGraph{
		Nodes:       map[string]*GraphNode{},
		outEdges:    map[string][]GraphEdge{},
		inEdges:     map[string][]GraphEdge{},
		Teleporters: map[string]TeleporterPair{},
	}

	for _, tabID := range pp.TabOrder {
		f := pp.Tabs[tabID]
		for i := range f.Nodes {
			n := f.Nodes[i]
			g.Nodes[n.ID] = &GraphNode{ParsedNode: n}
		}
	}

	for _, tabID := range pp.TabOrder {
		f := pp.Tabs[tabID]
		for _, e := range f.Edges {
			src := g.Nodes[e.Source]
			tgt := g.Nodes[e.Target]
			sem := classify(src, tgt, e)
			ge := GraphEdge{ParsedEdge: e, Semantics: sem}
			g.addEdge(ge)
		}
	}

	if err := g.pairTeleporters(); err != nil {
		return nil, err
	}

	g.EntryNodeID = g.findEntryNode()
	return g, nil
}

func (g *WorkflowGraph) addEdge(e GraphEdge) {
	g.Edges = append(g.Edges, e)
	g.outEdges[e.Source] = append(g.outEdges[e.Source], e)
	g.inEdges[e.Target] = append(g.inEdges[e.Target], e)
}

// classify assigns edge semantics from a fixed decision table over node
// types and handles, grounded on the spec's GraphEdge.Semantics definition.
func classify(src, tgt *GraphNode, e flow.ParsedEdge) EdgeSemantics {
	if src == nil || tgt == nil {
		return SemanticData
	}
	switch {
	case src.Type == "prompt" || src.Type == "context" || src.Type == "variable":
		if tgt.Type == nodeTypeAgent {
			return SemanticContext
		}
	case src.Type == "tool" || src.Type == "agentTool":
		if tgt.Type == nodeTypeAgent {
			return SemanticTool
		}
	case src.Type == nodeTypeAgent && tgt.Type == nodeTypeAgent:
		if e.SourceHandle == "parallel" || e.TargetHandle == "parallel" {
			return SemanticParallel
		}
		return SemanticSequential
	case src.Type == "custom" || tgt.Type == "custom":
		return SemanticData
	}
	return SemanticData
}

// pairTeleporters matches every teleporterOut node to the teleporterIn node
// sharing its Data["name"], splicing a synthetic SemanticLink edge between
// them so downstream stages see one continuous graph.
func (g *WorkflowGraph) pairTeleporters() error {
	outs := map[string]string{} // name -> node id
	ins := map[string]string{}

	for id, n := range g.Nodes {
		name, _ := n.Data["name"].(string)
		switch n.Type {
		case nodeTypeTeleporterOut:
			if name == "" {
				return cerr.NewCompilationError(cerr.StageBuilder, fmt.Sprintf("teleporter out node %s has no name", id), nil)
			}
			if prior, ok := outs[name]; ok {
				return cerr.NewCompilationError(cerr.StageBuilder, fmt.Sprintf("duplicate teleporter out %q at %s and %s", name, prior, id), nil)
			}
			outs[name] = id
		case nodeTypeTeleporterIn:
			if name == "" {
				return cerr.NewCompilationError(cerr.StageBuilder, fmt.Sprintf("teleporter in node %s has no name", id), nil)
			}
			ins[name] = id
		}
	}

	for name, outID := range outs {
		inID, ok := ins[name]
		if !ok {
			return cerr.NewCompilationError(cerr.StageBuilder, fmt.Sprintf("teleporter %q has an out node but no matching in node", name), nil)
		}
		g.Teleporters[name] = TeleporterPair{Name: name, OutNodeID: outID, InNodeID: inID}
		g.addEdge(GraphEdge{
			ParsedEdge: flow.ParsedEdge{ID: "teleport:" + name, Source: outID, Target: inID},
			Semantics:  SemanticLink,
		})
	}
	return nil
}

// findEntryNode returns the start node if one exists, else the agent with no
// incoming sequential edge. Ties are resolved by node-declaration order.
func (g *WorkflowGraph) findEntryNode() string {
	for id, n := range g.Nodes {
		if n.Type == nodeTypeStart {
			for _, e := range g.outEdges[id] {
				return e.Target
			}
			return id
		}
	}
	for id, n := range g.Nodes {
		if n.Type != nodeTypeAgent {
			continue
		}
		hasSeqIn := false
		for _, e := range g.inEdges[id] {
			if e.Semantics == SemanticSequential {
				hasSeqIn = true
				break
			}
		}
		if !hasSeqIn {
			return id
		}
	}
	return ""
}

// EdgesFrom returns every edge (of any semantics) leaving id.
func (g *WorkflowGraph) EdgesFrom(id string) []GraphEdge { return g.outEdges[id] }

// EdgesTo returns every edge (of any semantics) entering id.
func (g *WorkflowGraph) EdgesTo(id string) []GraphEdge { return g.inEdges[id] }

// EdgesFromWithSemantics filters EdgesFrom by semantics.
func (g *WorkflowGraph) EdgesFromWithSemantics(id string, sem EdgeSemantics) []GraphEdge {
	var out []GraphEdge
	for _, e := range g.outEdges[id] {
		if e.Semantics == sem {
			out = append(out, e)
		}
	}
	return out
}

// EdgesToWithSemantics filters EdgesTo by semantics.
func (g *WorkflowGraph) EdgesToWithSemantics(id string, sem EdgeSemantics) []GraphEdge {
	var out []GraphEdge
	for _, e := range g.inEdges[id] {
		if e.Semantics == sem {
			out = append(out, e)
		}
	}
	return out
}
