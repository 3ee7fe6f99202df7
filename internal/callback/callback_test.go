package callback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachRequiresSyncHandlerForAgentPoints(t *testing.T) {
	r := NewRegistry()
	err := r.Attach("a1", Handler{Point: PointBeforeAgent})
	require.Error(t, err)
}

func TestAttachRequiresToolHandlerForToolPoints(t *testing.T) {
	r := NewRegistry()
	err := r.Attach("a1", Handler{Point: PointBeforeTool})
	require.Error(t, err)
}

func TestAttachRejectsUnknownPoint(t *testing.T) {
	r := NewRegistry()
	err := r.Attach("a1", Handler{Point: "weird", Sync: func(string, map[string]any) Verdict { return Continue() }})
	require.Error(t, err)
}

func TestAttachDefaultsOnErrorToAbort(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeAgent, Sync: func(string, map[string]any) Verdict { return Continue() }}))
	hs := r.HandlersFor("a1", PointBeforeAgent)
	require.Len(t, hs, 1)
	assert.Equal(t, OnErrorAbort, hs[0].OnError)
}

func TestAttachOrdersByPriority(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeAgent, Priority: 5, ExtensionID: "low", Sync: func(string, map[string]any) Verdict { return Continue() }}))
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeAgent, Priority: 1, ExtensionID: "high", Sync: func(string, map[string]any) Verdict { return Continue() }}))
	hs := r.HandlersFor("a1", PointBeforeAgent)
	require.Len(t, hs, 2)
	assert.Equal(t, "high", hs[0].ExtensionID)
}

func TestAttachRejectedAfterFreeze(t *testing.T) {
	r := NewRegistry()
	r.Freeze()
	err := r.Attach("a1", Handler{Point: PointBeforeAgent, Sync: func(string, map[string]any) Verdict { return Continue() }})
	require.Error(t, err)
}

func TestRunSyncStopsOnAbort(t *testing.T) {
	r := NewRegistry()
	var ranSecond bool
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeAgent, Priority: 1, Sync: func(string, map[string]any) Verdict {
		return Abort(errors.New("blocked"))
	}}))
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeAgent, Priority: 2, Sync: func(string, map[string]any) Verdict {
		ranSecond = true
		return Continue()
	}}))

	v := RunSync(r, "a1", PointBeforeAgent, map[string]any{})
	assert.Equal(t, OutcomeAbort, v.Outcome)
	assert.False(t, ranSecond)
}

func TestRunSyncOnErrorContinueSkipsFailingHandler(t *testing.T) {
	r := NewRegistry()
	var ranSecond bool
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeAgent, Priority: 1, OnError: OnErrorContinue, Sync: func(string, map[string]any) Verdict {
		return Abort(errors.New("ignored"))
	}}))
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeAgent, Priority: 2, Sync: func(string, map[string]any) Verdict {
		ranSecond = true
		return Continue()
	}}))

	v := RunSync(r, "a1", PointBeforeAgent, map[string]any{})
	assert.Equal(t, OutcomeContinue, v.Outcome)
	assert.True(t, ranSecond)
}

func TestRunSyncReplaceCarriesDataForward(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeModel, Priority: 1, Sync: func(string, map[string]any) Verdict {
		return Replace(map[string]any{"x": 1})
	}}))
	var seen map[string]any
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeModel, Priority: 2, Sync: func(_ string, data map[string]any) Verdict {
		seen = data
		return Continue()
	}}))

	v := RunSync(r, "a1", PointBeforeModel, map[string]any{})
	assert.Equal(t, OutcomeContinue, v.Outcome)
	assert.Equal(t, 1, seen["x"])
	assert.Equal(t, 1, v.Data["x"])
}

func TestRunToolSkipShortCircuits(t *testing.T) {
	r := NewRegistry()
	var ranSecond bool
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeTool, Priority: 1, Tool: func(string, string, map[string]any) Verdict {
		return Skip("not allowed")
	}}))
	require.NoError(t, r.Attach("a1", Handler{Point: PointBeforeTool, Priority: 2, Tool: func(string, string, map[string]any) Verdict {
		ranSecond = true
		return Continue()
	}}))

	v := RunTool(r, "a1", "shell", PointBeforeTool, map[string]any{})
	assert.Equal(t, OutcomeSkip, v.Outcome)
	assert.False(t, ranSecond)
}

func TestRunSyncNoHandlersReturnsContinue(t *testing.T) {
	r := NewRegistry()
	v := RunSync(r, "unknown", PointAfterAgent, map[string]any{"k": "v"})
	assert.Equal(t, OutcomeContinue, v.Outcome)
	assert.Equal(t, "v", v.Data["k"])
}
