package runner

import "time"

// EventType enumerates RunEvent.Type values (spec 3.4).
type EventType string

const (
	EventRunStart           EventType = "run_start"
	EventAgentStart         EventType = "agent_start"
	EventAgentOutput        EventType = "agent_output"
	EventAgentEnd           EventType = "agent_end"
	EventToolCall           EventType = "tool_call"
	EventToolResult         EventType = "tool_result"
	EventThinking           EventType = "thinking"
	EventError              EventType = "error"
	EventLayerStart         EventType = "layer_start"
	EventLayerEnd           EventType = "layer_end"
	EventCustomNodeStart    EventType = "custom_node_start"
	EventCustomNodeEnd      EventType = "custom_node_end"
	EventCustomNodeError    EventType = "custom_node_error"
	EventCustomNodeCacheHit EventType = "custom_node_cache_hit"
	EventUserInputRequired  EventType = "user_input_required"
	EventUserInputResolved  EventType = "user_input_resolved"
	EventRunComplete        EventType = "run_complete"
)

// RunEvent is one emitted lifecycle event (spec 3.4).
type RunEvent struct {
	Type      EventType
	Timestamp time.Time
	AgentID   string
	AgentName string
	Data      map[string]any
}

// Status is RunResult's terminal state (spec 6.5).
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// FinishReason names why an agent turn ended, published into external
// results for post-agent custom nodes (spec 9's finish-reason propagation).
type FinishReason struct {
	Name        string
	Description string
}

// RunResult is the Workflow Runner's terminal output (spec 4.13 item 11).
type RunResult struct {
	RunID      string
	Status     Status
	Output     string
	Error      string
	Events     []RunEvent
	DurationMS int64
	Metadata   map[string]any
}

func newEvent(t EventType, data map[string]any) RunEvent {
	return RunEvent{Type: t, Timestamp: time.Now(), Data: data}
}
