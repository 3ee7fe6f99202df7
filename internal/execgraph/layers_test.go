package execgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/internal/compiler/ir"
)

func diamondWorkflow() *ir.WorkflowIR {
	return &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{
			{ID: "a", OutputConnections: map[string][]string{"out": {"b", "c"}}},
			{ID: "b", InputConnections: map[string][]ir.ConnectionSource{"in": {{NodeID: "a"}}}, OutputConnections: map[string][]string{"out": {"d"}}},
			{ID: "c", InputConnections: map[string][]ir.ConnectionSource{"in": {{NodeID: "a"}}}, OutputConnections: map[string][]string{"out": {"d"}}},
			{ID: "d", InputConnections: map[string][]ir.ConnectionSource{
				"in1": {{NodeID: "b"}},
				"in2": {{NodeID: "c"}},
			}, OutputNode: true},
		},
	}
}

func TestTopologicalLayersOrdersDiamond(t *testing.T) {
	g := Build(diamondWorkflow())
	subset := g.TraceDependencies([]string{"d"})
	layers, err := g.TopologicalLayers(subset)
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Equal(t, []string{"a"}, layers[0])
	assert.ElementsMatch(t, []string{"b", "c"}, layers[1])
	assert.Equal(t, []string{"d"}, layers[2])
}

func TestTopologicalLayersDetectsCycle(t *testing.T) {
	w := &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{
			{ID: "x", InputConnections: map[string][]ir.ConnectionSource{"in": {{NodeID: "y"}}}, OutputConnections: map[string][]string{"out": {"y"}}},
			{ID: "y", InputConnections: map[string][]ir.ConnectionSource{"in": {{NodeID: "x"}}}, OutputConnections: map[string][]string{"out": {"x"}}},
		},
	}
	g := Build(w)
	subset := map[string]bool{"x": true, "y": true}
	_, err := g.TopologicalLayers(subset)
	require.Error(t, err)
	var cerr *CycleError
	require.ErrorAs(t, err, &cerr)
	assert.ElementsMatch(t, []string{"x", "y"}, cerr.Nodes)
}

func TestTopologicalLayersEmptySubset(t *testing.T) {
	g := Build(diamondWorkflow())
	layers, err := g.TopologicalLayers(map[string]bool{})
	require.NoError(t, err)
	assert.Empty(t, layers)
}
