package substitute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/internal/compiler/ir"
)

func TestApplyReplacesKnownPlaceholders(t *testing.T) {
	data := []map[string]any{
		{"text": "hello {name}, welcome to {place}"},
	}
	vars := map[string]string{"name": "Ada", "place": "the lab"}

	res := Apply(data, vars)
	assert.Equal(t, 2, res.Substitutions)
	assert.Equal(t, "hello Ada, welcome to the lab", data[0]["text"])
}

func TestApplyLeavesUnknownPlaceholdersLiteral(t *testing.T) {
	data := []map[string]any{{"text": "value is {unknown}"}}
	res := Apply(data, map[string]string{"known": "x"})
	assert.Equal(t, 0, res.Substitutions)
	assert.Equal(t, "value is {unknown}", data[0]["text"])
}

func TestApplyWalksNestedMapsAndLists(t *testing.T) {
	data := []map[string]any{
		{
			"nested": map[string]any{"inner": "{x}"},
			"list":   []any{"{x}", "plain"},
		},
	}
	res := Apply(data, map[string]string{"x": "1"})
	assert.Equal(t, 2, res.Substitutions)
	nested := data[0]["nested"].(map[string]any)
	assert.Equal(t, "1", nested["inner"])
	list := data[0]["list"].([]any)
	assert.Equal(t, "1", list[0])
}

func TestApplyIdempotentOnPlainValues(t *testing.T) {
	data := []map[string]any{{"text": "{x}"}}
	vars := map[string]string{"x": "resolved"}

	first := Apply(data, vars)
	second := Apply(data, vars)
	assert.Equal(t, 1, first.Substitutions)
	assert.Equal(t, 0, second.Substitutions)
	assert.Equal(t, "resolved", data[0]["text"])
}

func TestApplyToIRSubstitutesAgentFields(t *testing.T) {
	w := &ir.WorkflowIR{
		AllAgents: map[string]*ir.AgentIR{
			"a1": {ID: "a1", Instruction: "do {task}", Description: "handles {task}"},
		},
		CustomNodes: []*ir.CustomNodeIR{
			{ID: "c1", Config: map[string]any{"cmd": "run {task}"}},
		},
	}
	res := ApplyToIR(w, map[string]string{"task": "ingestion"})
	assert.Equal(t, 3, res.Substitutions)
	assert.Equal(t, "do ingestion", w.AllAgents["a1"].Instruction)
	assert.Equal(t, "handles ingestion", w.AllAgents["a1"].Description)
	assert.Equal(t, "run ingestion", w.CustomNodes[0].Config["cmd"])
}

func TestApplyToIRNoopWithoutVariables(t *testing.T) {
	w := &ir.WorkflowIR{
		AllAgents: map[string]*ir.AgentIR{"a1": {ID: "a1", Instruction: "do {task}"}},
	}
	res := ApplyToIR(w, nil)
	require.Equal(t, 0, res.Substitutions)
	assert.Equal(t, "do {task}", w.AllAgents["a1"].Instruction)
}
