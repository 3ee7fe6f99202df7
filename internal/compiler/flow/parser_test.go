package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/internal/compiler/project"
)

func sampleProject() *project.Project {
	return &project.Project{
		Tabs: []project.Tab{
			{ID: "t2", Name: "second", Order: 1},
			{ID: "t1", Name: "first", Order: 0},
		},
		Nodes: []project.RawNode{
			{ID: "n1", Type: "agent", TabID: "t1", Data: map[string]any{"name": "a1"}},
			{ID: "n2", Type: "custom:shell", TabID: "t1", Data: map[string]any{}},
			{ID: "n3", Type: "agent", TabID: "t2"},
		},
		Edges: []project.RawEdge{
			{ID: "e1", Source: "n1", Target: "n2", SourceHandle: "out", TargetHandle: "in"},
		},
	}
}

func TestParseOrdersTabsByOrder(t *testing.T) {
	pp := Parse(sampleProject())
	require.Len(t, pp.TabOrder, 2)
	assert.Equal(t, []string{"t1", "t2"}, pp.TabOrder)
}

func TestParseSplitsCustomUnitID(t *testing.T) {
	pp := Parse(sampleProject())
	n, ok := pp.Tabs["t1"].GetNode("n2")
	require.True(t, ok)
	assert.Equal(t, "custom", n.Type)
	assert.Equal(t, "shell", n.UnitID)
	assert.Equal(t, "shell", n.Data["_unit_id"])
}

func TestParseBuildsEdgeIndices(t *testing.T) {
	pp := Parse(sampleProject())
	flow := pp.Tabs["t1"]
	require.Len(t, flow.EdgesFrom("n1"), 1)
	require.Len(t, flow.EdgesTo("n2"), 1)
	assert.Equal(t, "e1", flow.EdgesFrom("n1")[0].ID)
}

func TestParseNodesByType(t *testing.T) {
	pp := Parse(sampleProject())
	agents := pp.Tabs["t1"].NodesByType("agent")
	require.Len(t, agents, 1)
	assert.Equal(t, "n1", agents[0].ID)
}

func TestParseGetNodeAcrossTabs(t *testing.T) {
	pp := Parse(sampleProject())
	n, ok := pp.GetNode("n3")
	require.True(t, ok)
	assert.Equal(t, "agent", n.Type)

	_, ok = pp.GetNode("missing")
	assert.False(t, ok)
}

func TestParseChildrenByParentID(t *testing.T) {
	p := &project.Project{
		Tabs: []project.Tab{{ID: "t1", Order: 0}},
		Nodes: []project.RawNode{
			{ID: "group", Type: "group", TabID: "t1"},
			{ID: "child1", Type: "agent", TabID: "t1", ParentID: "group"},
			{ID: "child2", Type: "agent", TabID: "t1", ParentID: "group"},
			{ID: "other", Type: "agent", TabID: "t1"},
		},
	}
	pp := Parse(p)
	children := pp.Tabs["t1"].Children("group")
	require.Len(t, children, 2)
}
