// Package flow turns a loaded project.Project into a ParsedFlow: typed nodes
// and edges with lookup helpers, one step before graph construction (spec
// section 4.2).
package flow

import (
	"strings"

	"github.com/kadirpekel/adkflow/internal/compiler/project"
)

// ParsedNode is a project.RawNode with its custom-unit id (if any) hoisted
// out of the generic "custom:<unit_id>" type encoding.
type ParsedNode struct {
	ID       string
	Type     string
	UnitID   string // non-empty only when Type == "custom"
	Data     map[string]any
	TabID    string
	ParentID string
}

// ParsedEdge is a project.RawEdge carried through unchanged; semantics are
// assigned later by the graph builder.
type ParsedEdge struct {
	ID           string
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

const customNodePrefix = "custom:"

// ParsedFlow is one tab's worth of parsed nodes/edges plus lookup indices.
type ParsedFlow struct {
	TabID string
	Nodes []ParsedNode
	Edges []ParsedEdge

	byID     map[string]*ParsedNode
	outEdges map[string][]ParsedEdge
	inEdges  map[string][]ParsedEdge
}

// ParsedProject is every tab's ParsedFlow plus the originating project.
type ParsedProject struct {
	Project  *project.Project
	Tabs     map[string]*ParsedFlow // tabID -> flow
	TabOrder []string
}

// Parse partitions p's nodes/edges by tab and builds lookup indices.
// Edges whose endpoints cross tabs were already dropped by project.Load.
func Parse(p *project.Project) *ParsedProject {
	pp := &ParsedProject{Project: p, Tabs: map[string]*ParsedFlow{}}

	order := make([]project.Tab, len(p.Tabs))
	copy(order, p.Tabs)
	sortTabsByOrder(order)

	for _, t := range order {
		pp.Tabs[t.ID] = &ParsedFlow{
			TabID:    t.ID,
			byID:     map[string]*ParsedNode{},
			outEdges: map[string][]ParsedEdge{},
			inEdges:  map[string][]ParsedEdge{},
		}
		pp.TabOrder = append(pp.TabOrder, t.ID)
	}

	for _, n := range p.Nodes {
		flow, ok := pp.Tabs[n.TabID]
		if !ok {
			continue
		}
		pn := ParsedNode{
			ID:       n.ID,
			Type:     n.Type,
			Data:     n.Data,
			TabID:    n.TabID,
			ParentID: n.ParentID,
		}
		if strings.HasPrefix(n.Type, customNodePrefix) {
			pn.UnitID = strings.TrimPrefix(n.Type, customNodePrefix)
			pn.Type = "custom"
			if pn.Data == nil {
				pn.Data = map[string]any{}
			}
			pn.Data["_unit_id"] = pn.UnitID
		}
		flow.Nodes = append(flow.Nodes, pn)
	}
	for _, flow := range pp.Tabs {
		for i := range flow.Nodes {
			flow.byID[flow.Nodes[i].ID] = &flow.Nodes[i]
		}
	}

	for _, e := range p.Edges {
		srcTab := nodeTab(pp, e.Source)
		if srcTab == "" {
			continue
		}
		flow := pp.Tabs[srcTab]
		pe := ParsedEdge{ID: e.ID, Source: e.Source, Target: e.Target, SourceHandle: e.SourceHandle, TargetHandle: e.TargetHandle}
		flow.Edges = append(flow.Edges, pe)
		flow.outEdges[e.Source] = append(flow.outEdges[e.Source], pe)
		flow.inEdges[e.Target] = append(flow.inEdges[e.Target], pe)
	}

	return pp
}

func nodeTab(pp *ParsedProject, nodeID string) string {
	for tabID, flow := range pp.Tabs {
		if _, ok := flow.byID[nodeID]; ok {
			return tabID
		}
	}
	return ""
}

func sortTabsByOrder(tabs []project.Tab) {
	for i := 1; i < len(tabs); i++ {
		for j := i; j > 0 && tabs[j].Order < tabs[j-1].Order; j-- {
			tabs[j], tabs[j-1] = tabs[j-1], tabs[j]
		}
	}
}

// GetNode looks up a node by id within this tab.
func (f *ParsedFlow) GetNode(id string) (*ParsedNode, bool) {
	n, ok := f.byID[id]
	return n, ok
}

// EdgesFrom returns every edge whose source is id, in declaration order.
func (f *ParsedFlow) EdgesFrom(id string) []ParsedEdge { return f.outEdges[id] }

// EdgesTo returns every edge whose target is id, in declaration order.
func (f *ParsedFlow) EdgesTo(id string) []ParsedEdge { return f.inEdges[id] }

// Children returns every node whose ParentID is id (visual group nesting).
func (f *ParsedFlow) Children(parentID string) []ParsedNode {
	var out []ParsedNode
	for _, n := range f.Nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	return out
}

// NodesByType returns every node of the given type, in declaration order.
func (f *ParsedFlow) NodesByType(t string) []ParsedNode {
	var out []ParsedNode
	for _, n := range f.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// AllParsedNode looks up a node by id across every tab.
func (pp *ParsedProject) GetNode(id string) (*ParsedNode, bool) {
	for _, flow := range pp.Tabs {
		if n, ok := flow.byID[id]; ok {
			return n, true
		}
	}
	return nil, false
}
