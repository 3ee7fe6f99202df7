package execgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/internal/compiler/ir"
	"github.com/kadirpekel/adkflow/internal/hook"
	"github.com/kadirpekel/adkflow/pkg/flowunit"
)

type fakeUnit struct {
	id  string
	run func(inputs, config map[string]any) (map[string]any, error)
}

func (f fakeUnit) UnitID() string { return f.id }
func (f fakeUnit) Run(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	return f.run(inputs, config)
}

type fakeResolver map[string]flowunit.Unit

func (f fakeResolver) GetUnit(unitID string) (flowunit.Unit, bool) {
	u, ok := f[unitID]
	return u, ok
}

func newExecutor(t *testing.T, w *ir.WorkflowIR, units fakeResolver) *Executor {
	t.Helper()
	cache, err := NewCache(16)
	require.NoError(t, err)
	return &Executor{
		Graph: Build(w),
		Units: units,
		Cache: cache,
		Hooks: hook.NewRegistry(),
		RunID: "run-1",
	}
}

func TestExecuteRunsSingleNode(t *testing.T) {
	w := &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{{ID: "c1", UnitID: "echo", OutputNode: true}},
	}
	units := fakeResolver{"echo": fakeUnit{id: "echo", run: func(inputs, config map[string]any) (map[string]any, error) {
		return map[string]any{"result": "ok"}, nil
	}}}
	ex := newExecutor(t, w, units)

	results, err := ex.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Contains(t, results, "c1")
	assert.Equal(t, "ok", results["c1"]["result"])
}

func TestExecutePropagatesNodeError(t *testing.T) {
	w := &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{{ID: "c1", UnitID: "boom", OutputNode: true}},
	}
	units := fakeResolver{"boom": fakeUnit{id: "boom", run: func(inputs, config map[string]any) (map[string]any, error) {
		return nil, errors.New("kaboom")
	}}}
	ex := newExecutor(t, w, units)

	_, err := ex.Execute(context.Background(), nil, nil)
	require.Error(t, err)
	var nerr *NodeErr
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "c1", nerr.NodeID)
}

func TestExecuteResolvesInputsFromUpstream(t *testing.T) {
	w := &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{
			{ID: "c1", UnitID: "producer", OutputConnections: map[string][]string{"out": {"c2"}}},
			{ID: "c2", UnitID: "consumer", InputConnections: map[string][]ir.ConnectionSource{
				"in": {{NodeID: "c1", Handle: "out"}},
			}, OutputNode: true},
		},
	}
	var seenInput any
	units := fakeResolver{
		"producer": fakeUnit{id: "producer", run: func(inputs, config map[string]any) (map[string]any, error) {
			return map[string]any{"out": "payload"}, nil
		}},
		"consumer": fakeUnit{id: "consumer", run: func(inputs, config map[string]any) (map[string]any, error) {
			seenInput = inputs["in"]
			return map[string]any{"done": true}, nil
		}},
	}
	ex := newExecutor(t, w, units)

	_, err := ex.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "payload", seenInput)
}

func TestExecuteUnknownUnitErrors(t *testing.T) {
	w := &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{{ID: "c1", UnitID: "missing", OutputNode: true}},
	}
	ex := newExecutor(t, w, fakeResolver{})

	_, err := ex.Execute(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestExecuteCachesRepeatedCall(t *testing.T) {
	w := &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{{ID: "c1", UnitID: "counter", OutputNode: true}},
	}
	calls := 0
	units := fakeResolver{"counter": fakeUnit{id: "counter", run: func(inputs, config map[string]any) (map[string]any, error) {
		calls++
		return map[string]any{"n": calls}, nil
	}}}
	ex := newExecutor(t, w, units)

	r1, err := ex.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	r2, err := ex.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, r1["c1"]["n"], r2["c1"]["n"])
	assert.Equal(t, 1, calls)
}

func TestExecuteHonorsPlanAbortHook(t *testing.T) {
	w := &ir.WorkflowIR{
		CustomNodes: []*ir.CustomNodeIR{{ID: "c1", UnitID: "echo", OutputNode: true}},
	}
	units := fakeResolver{"echo": fakeUnit{id: "echo", run: func(inputs, config map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	}}}
	ex := newExecutor(t, w, units)
	require.NoError(t, ex.Hooks.Register(hook.Spec{
		HookName:    "on_execution_plan",
		ExtensionID: "blocker",
		Handler: func(ctx context.Context, hctx *hook.Context, data map[string]any) (hook.Result, map[string]any) {
			return hook.Abort(errors.New("blocked")), data
		},
	}))

	_, err := ex.Execute(context.Background(), nil, nil)
	require.Error(t, err)
}
