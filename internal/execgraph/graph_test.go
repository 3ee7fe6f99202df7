package execgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/internal/compiler/ir"
)

func sampleWorkflow() *ir.WorkflowIR {
	return &ir.WorkflowIR{
		AllAgents: map[string]*ir.AgentIR{
			"agent1": {ID: "agent1"},
		},
		CustomNodes: []*ir.CustomNodeIR{
			{
				ID:     "c1",
				UnitID: "unit_a",
				InputConnections: map[string][]ir.ConnectionSource{
					"in": {{NodeID: "agent1", Handle: "out"}},
				},
				OutputConnections: map[string][]string{"out": {"c2"}},
			},
			{
				ID:     "c2",
				UnitID: "unit_b",
				InputConnections: map[string][]ir.ConnectionSource{
					"in": {{NodeID: "c1", Handle: "out"}},
				},
				OutputNode: true,
			},
		},
	}
}

func TestBuildCreatesAgentPlaceholder(t *testing.T) {
	g := Build(sampleWorkflow())
	n, ok := g.Nodes["agent1"]
	require.True(t, ok)
	assert.True(t, n.IsAgent)
	assert.Nil(t, n.CustomNode)
}

func TestSinksIncludesOutputNodeAndNoOutgoing(t *testing.T) {
	g := Build(sampleWorkflow())
	sinks := g.Sinks()
	assert.ElementsMatch(t, []string{"c2"}, sinks)
}

func TestTraceDependenciesWalksBackward(t *testing.T) {
	g := Build(sampleWorkflow())
	visited := g.TraceDependencies([]string{"c2"})
	assert.True(t, visited["c2"])
	assert.True(t, visited["c1"])
	assert.True(t, visited["agent1"])
}

func TestEdgesInOut(t *testing.T) {
	g := Build(sampleWorkflow())
	require.Len(t, g.EdgesIn("c2"), 1)
	require.Len(t, g.EdgesOut("c1"), 1)
	assert.Equal(t, "c1", g.EdgesIn("c2")[0].SourceID)
}
