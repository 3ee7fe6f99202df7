// Package callback implements the per-agent before/after lifecycle pipeline
// (spec section 4.9): before_agent, after_agent, before_model, after_model,
// before_tool, after_tool. Handler signatures follow the teacher's
// llmagent.BeforeModelCallback/AfterModelCallback/BeforeToolCallback/
// AfterToolCallback family (pkg/agent/llmagent/llmagent.go) -- before/after
// model and before/after agent take no context.Context, which is itself the
// teacher's enforcement that those points run synchronously in-process;
// before/after tool take one, since tool execution is already asynchronous.
package callback

import (
	"fmt"
	"sort"
)

// Point is one of the six lifecycle attachment points an agent can wire a
// callback to.
type Point string

const (
	PointBeforeAgent Point = "before_agent"
	PointAfterAgent  Point = "after_agent"
	PointBeforeModel Point = "before_model"
	PointAfterModel  Point = "after_model"
	PointBeforeTool  Point = "before_tool"
	PointAfterTool   Point = "after_tool"
)

// OnError controls what happens when a handler itself returns an error.
type OnError string

const (
	OnErrorAbort    OnError = "abort"
	OnErrorContinue OnError = "continue"
)

// Outcome is what a before_* handler decided to do with the call it guards.
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeSkip     Outcome = "skip"    // before_tool only: short-circuits the call
	OutcomeReplace  Outcome = "replace" // substitutes args/output
	OutcomeAbort    Outcome = "abort"
)

// Verdict is a handler's return value.
type Verdict struct {
	Outcome Outcome
	Data    map[string]any // replacement args (before_tool) or output (after_tool/after_model)
	Err     error
}

func Continue() Verdict { return Verdict{Outcome: OutcomeContinue} }
func Skip(reason string) Verdict {
	return Verdict{Outcome: OutcomeSkip, Data: map[string]any{"skipped": true, "reason": reason}}
}
func Replace(data map[string]any) Verdict { return Verdict{Outcome: OutcomeReplace, Data: data} }
func Abort(err error) Verdict             { return Verdict{Outcome: OutcomeAbort, Err: err} }

// SyncHandler is the signature for before/after_agent and before/after_model:
// no context, called in-process, must return immediately.
type SyncHandler func(agentName string, data map[string]any) Verdict

// ToolHandler is the signature for before/after_tool: may perform blocking
// work since tool execution already runs off the model's turn.
type ToolHandler func(agentName, toolName string, data map[string]any) Verdict

// Handler is a registered callback binding.
type Handler struct {
	ExtensionID string
	Point       Point
	Priority    int
	OnError     OnError
	Sync        SyncHandler // set when Point is before/after_agent or before/after_model
	Tool        ToolHandler // set when Point is before/after_tool
}

// Registry holds every agent's attached callbacks, keyed by agent id, frozen
// once the agent tree is materialized (spec 4.9's registry-freeze rule).
type Registry struct {
	byAgent map[string]map[Point][]Handler
	frozen  bool
}

func NewRegistry() *Registry {
	return &Registry{byAgent: map[string]map[Point][]Handler{}}
}

func (r *Registry) Attach(agentID string, h Handler) error {
	if r.frozen {
		return fmt.Errorf("callback registry is frozen; cannot attach %s to agent %s", h.Point, agentID)
	}
	switch h.Point {
	case PointBeforeAgent, PointAfterAgent, PointBeforeModel, PointAfterModel:
		if h.Sync == nil {
			return fmt.Errorf("%s requires a synchronous handler", h.Point)
		}
	case PointBeforeTool, PointAfterTool:
		if h.Tool == nil {
			return fmt.Errorf("%s requires a tool handler", h.Point)
		}
	default:
		return fmt.Errorf("unknown callback point %q", h.Point)
	}
	if h.OnError == "" {
		h.OnError = OnErrorAbort
	}
	if r.byAgent[agentID] == nil {
		r.byAgent[agentID] = map[Point][]Handler{}
	}
	r.byAgent[agentID][h.Point] = append(r.byAgent[agentID][h.Point], h)
	sort.SliceStable(r.byAgent[agentID][h.Point], func(i, j int) bool {
		return r.byAgent[agentID][h.Point][i].Priority < r.byAgent[agentID][h.Point][j].Priority
	})
	return nil
}

// Freeze prevents further Attach calls, matching the spec's "registry is
// frozen once SDK-facing agent functions are built" rule.
func (r *Registry) Freeze() { r.frozen = true }

func (r *Registry) HandlersFor(agentID string, p Point) []Handler {
	return r.byAgent[agentID][p]
}
