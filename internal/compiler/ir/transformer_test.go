package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/internal/compiler/flow"
	"github.com/kadirpekel/adkflow/internal/compiler/graph"
	"github.com/kadirpekel/adkflow/internal/compiler/project"
)

func buildGraph(t *testing.T, nodes []project.RawNode, edges []project.RawEdge) *graph.WorkflowGraph {
	t.Helper()
	p := &project.Project{Tabs: []project.Tab{{ID: "t1", Order: 0}}, Nodes: nodes, Edges: edges}
	for i := range p.Nodes {
		if p.Nodes[i].TabID == "" {
			p.Nodes[i].TabID = "t1"
		}
	}
	g, err := graph.Build(flow.Parse(p))
	require.NoError(t, err)
	return g
}

func TestTransformSimpleChain(t *testing.T) {
	nodes := []project.RawNode{
		{ID: "a1", Type: "agent", Data: map[string]any{"name": "a1", "description": "d"}},
		{ID: "a2", Type: "agent", Data: map[string]any{"name": "a2", "description": "d"}},
	}
	edges := []project.RawEdge{{ID: "e1", Source: "a1", Target: "a2"}}
	g := buildGraph(t, nodes, edges)
	p := &project.Project{Path: "/proj"}

	w, err := Transform(g, p)
	require.NoError(t, err)
	require.Contains(t, w.AllAgents, "a1")
	require.Contains(t, w.AllAgents, "a2")
	assert.Equal(t, []string{"a2"}, w.AllAgents["a1"].SubAgents)

	root := w.RootAgent()
	require.NotNil(t, root)
	assert.Equal(t, AgentTypeSequential, root.Type)
	assert.Equal(t, []string{"a1", "a2"}, root.SubAgents)
}

func TestTransformDiamondBecomesSyntheticParallel(t *testing.T) {
	nodes := []project.RawNode{
		{ID: "a1", Type: "agent", Data: map[string]any{"name": "a1"}},
		{ID: "b1", Type: "agent", Data: map[string]any{"name": "b1"}},
		{ID: "b2", Type: "agent", Data: map[string]any{"name": "b2"}},
		{ID: "join", Type: "agent", Data: map[string]any{"name": "join"}},
	}
	edges := []project.RawEdge{
		{ID: "e1", Source: "a1", Target: "b1"},
		{ID: "e2", Source: "a1", Target: "b2", SourceHandle: "parallel"},
		{ID: "e3", Source: "b1", Target: "join"},
		{ID: "e4", Source: "b2", Target: "join"},
	}
	g := buildGraph(t, nodes, edges)
	p := &project.Project{Path: "/proj"}

	w, err := Transform(g, p)
	require.NoError(t, err)

	root := w.RootAgent()
	require.NotNil(t, root)
	assert.Equal(t, AgentTypeSequential, root.Type)
	require.Len(t, root.SubAgents, 3) // a1, synthetic parallel, join
	par := w.AllAgents[root.SubAgents[1]]
	require.NotNil(t, par)
	assert.Equal(t, AgentTypeParallel, par.Type)
	assert.ElementsMatch(t, []string{"b1", "b2"}, par.SubAgents)
}

func TestNormalizeIncludeContents(t *testing.T) {
	assert.Equal(t, IncludeContentsDefault, normalizeIncludeContents(true))
	assert.Equal(t, IncludeContentsNone, normalizeIncludeContents(false))
	assert.Equal(t, IncludeContentsNone, normalizeIncludeContents("none"))
	assert.Equal(t, IncludeContentsDefault, normalizeIncludeContents("anything-else"))
	assert.Equal(t, IncludeContentsDefault, normalizeIncludeContents(nil))
}

func TestConcatInstructionOrderAndPrefixes(t *testing.T) {
	nodes := []project.RawNode{
		{ID: "p1", Type: "prompt", Data: map[string]any{"text": "base instructions"}},
		{ID: "c1", Type: "context", Data: map[string]any{"text": "background info"}},
		{ID: "v1", Type: "variable", Data: map[string]any{"name": "x", "value": "1"}},
		{ID: "agent1", Type: "agent", Data: map[string]any{"name": "a", "description": "d"}},
	}
	edges := []project.RawEdge{
		{ID: "e1", Source: "p1", Target: "agent1"},
		{ID: "e2", Source: "c1", Target: "agent1"},
		{ID: "e3", Source: "v1", Target: "agent1"},
	}
	g := buildGraph(t, nodes, edges)
	p := &project.Project{Path: "/proj"}

	w, err := Transform(g, p)
	require.NoError(t, err)
	instr := w.AllAgents["agent1"].Instruction
	assert.Contains(t, instr, "base instructions")
	assert.Contains(t, instr, "## Context\nbackground info")
	assert.Contains(t, instr, "{x}: 1")
}

func TestResolveToolsRequiresExactlyOneSource(t *testing.T) {
	nodes := []project.RawNode{
		{ID: "tool1", Type: "tool", Data: map[string]any{"name": "t", "file": "missing.py"}},
		{ID: "agent1", Type: "agent", Data: map[string]any{"name": "a", "description": "d"}},
	}
	edges := []project.RawEdge{{ID: "e1", Source: "tool1", Target: "agent1"}}
	g := buildGraph(t, nodes, edges)
	p := &project.Project{Path: "/proj", Tools: map[string]project.FileRef{}} // tool file never loaded

	_, err := Transform(g, p)
	require.Error(t, err)
}

func TestToolIRValidateExactlyOne(t *testing.T) {
	require.Error(t, ToolIR{Name: "t"}.Validate())                           // neither set
	require.Error(t, ToolIR{Name: "t", FilePath: "f", Code: "c"}.Validate()) // both set
	require.NoError(t, ToolIR{Name: "t", FilePath: "f"}.Validate())
	require.NoError(t, ToolIR{Name: "t", Code: "c"}.Validate())
}

func TestTransformUserInputSkippedWithoutOutgoingAgent(t *testing.T) {
	nodes := []project.RawNode{
		{ID: "ui1", Type: "userInput", Data: map[string]any{"name": "ask"}},
	}
	g := buildGraph(t, nodes, nil)
	p := &project.Project{Path: "/proj"}

	w, err := Transform(g, p)
	require.NoError(t, err)
	assert.Empty(t, w.UserInputs)
}

func TestTransformUserInputKeptAsTrigger(t *testing.T) {
	nodes := []project.RawNode{
		{ID: "ui1", Type: "userInput", Data: map[string]any{"name": "ask", "is_trigger": true}},
	}
	g := buildGraph(t, nodes, nil)
	p := &project.Project{Path: "/proj"}

	w, err := Transform(g, p)
	require.NoError(t, err)
	require.Len(t, w.UserInputs, 1)
	assert.True(t, w.UserInputs[0].IsTrigger)
}

func TestPopulateUpstreamOutputKeys(t *testing.T) {
	nodes := []project.RawNode{
		{ID: "a1", Type: "agent", Data: map[string]any{"name": "a1", "output_key": "{result}"}},
		{ID: "a2", Type: "agent", Data: map[string]any{"name": "a2"}},
	}
	edges := []project.RawEdge{{ID: "e1", Source: "a1", Target: "a2"}}
	g := buildGraph(t, nodes, edges)
	p := &project.Project{Path: "/proj"}

	w, err := Transform(g, p)
	require.NoError(t, err)
	assert.Equal(t, "result", w.AllAgents["a1"].OutputKey)
	assert.Equal(t, []string{"result"}, w.AllAgents["a2"].UpstreamOutputKeys)
}
