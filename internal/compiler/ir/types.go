// Package ir defines the typed, validated intermediate representation that
// the compiler pipeline (project -> flow -> graph -> ir) produces, and the
// transformer that builds it from a parsed WorkflowGraph.
package ir

import (
	"fmt"

	"github.com/kadirpekel/adkflow/internal/compiler/cerr"
)

// IncludeContents controls whether an LLM agent sees the full conversation
// history or none of it.
type IncludeContents string

const (
	IncludeContentsDefault IncludeContents = "default"
	IncludeContentsNone    IncludeContents = "none"
)

// AgentType is the tagged-variant discriminator for AgentIR.
type AgentType string

const (
	AgentTypeLLM        AgentType = "llm"
	AgentTypeSequential AgentType = "sequential"
	AgentTypeParallel   AgentType = "parallel"
	AgentTypeLoop       AgentType = "loop"
)

// ErrorBehavior controls how a tool or shell command failure is surfaced.
type ErrorBehavior string

const (
	ErrorBehaviorFailFast    ErrorBehavior = "fail_fast"
	ErrorBehaviorPassToModel ErrorBehavior = "pass_to_model"
)

// TimeoutBehavior controls what happens when a UserInputIR pause expires.
type TimeoutBehavior string

const (
	TimeoutBehaviorError          TimeoutBehavior = "error"
	TimeoutBehaviorPredefinedText TimeoutBehavior = "predefined_text"
)

// PlannerConfig mirrors spec 3.3's flat record of planner tunables.
type PlannerConfig struct {
	Type              string `mapstructure:"type"`
	Model             string `mapstructure:"model"`
	MaxPlanningTokens int    `mapstructure:"max_planning_tokens"`
}

// CodeExecutorConfig mirrors spec 3.3's code-executor tunables.
type CodeExecutorConfig struct {
	Type        string `mapstructure:"type"`
	TimeoutSecs int    `mapstructure:"timeout_seconds"`
	Sandboxed   bool   `mapstructure:"sandboxed"`
}

// HTTPOptionsConfig mirrors spec 3.3's http_options tunables (passed through
// verbatim to the LLM SDK collaborator).
type HTTPOptionsConfig struct {
	BaseURL     string            `mapstructure:"base_url"`
	TimeoutSecs int               `mapstructure:"timeout_seconds"`
	Headers     map[string]string `mapstructure:"headers"`
	MaxRetries  int               `mapstructure:"max_retries"`
}

// CallbackSourceIR names a registered callback handler (by extension id and
// factory method) attached to an agent at one or more lifecycle points.
type CallbackSourceIR struct {
	ExtensionID string   `mapstructure:"extension_id"`
	Method      string   `mapstructure:"method"`
	Points      []string `mapstructure:"points"` // before_agent, after_agent, before_model, after_model, before_tool, after_tool
	Priority    int      `mapstructure:"priority"`
	OnError     string   `mapstructure:"on_error"` // continue | abort
}

// CallbackConfig is the flat record of an agent's attached callbacks.
type CallbackConfig struct {
	Sources []CallbackSourceIR
}

// SchemaSourceIR points at a JSON-schema file or inline schema literal used
// for an agent's input_schema/output_schema.
type SchemaSourceIR struct {
	FilePath string         `mapstructure:"file_path"`
	Inline   map[string]any `mapstructure:"inline"`
}

// ToolIR is a resolved tool reference. Exactly one of FilePath/Code is set
// (spec invariant 3.5).
type ToolIR struct {
	Name          string
	FilePath      string
	Code          string
	ErrorBehavior ErrorBehavior
	Description   string
}

// Validate enforces the "exactly one of file_path/code" invariant.
func (t ToolIR) Validate() error {
	hasFile := t.FilePath != ""
	hasCode := t.Code != ""
	if hasFile == hasCode {
		return cerr.NewCompilationError(cerr.StageTransformer,
			fmt.Sprintf("tool %q must set exactly one of file_path or code", t.Name), nil)
	}
	return nil
}

// AgentIR is the tagged-variant record for every agent node surviving
// transform, per spec 3.3.
type AgentIR struct {
	ID          string
	Name        string
	Type        AgentType
	Model       string
	Instruction string

	Temperature float64

	Tools     []ToolIR
	SubAgents []string // IDs, resolved against WorkflowIR.AllAgents

	OutputKey    string
	OutputSchema *SchemaSourceIR
	InputSchema  *SchemaSourceIR

	IncludeContents IncludeContents
	StripContents   bool

	MaxIterations int // loop only

	DisallowTransferToParent bool
	DisallowTransferToPeers  bool

	Planner      *PlannerConfig
	CodeExecutor *CodeExecutorConfig
	HTTPOptions  *HTTPOptionsConfig
	Callbacks    CallbackConfig

	UpstreamOutputKeys []string
	ContextVarSources  []string

	SourceNodeID string
	Description  string
}

// ConnectionSource names where a CustomNodeIR input port reads its value
// from: an upstream node's output port.
type ConnectionSource struct {
	NodeID string
	Handle string
}

// CustomNodeIR is a resolved FlowUnit instantiation in the graph.
type CustomNodeIR struct {
	ID     string
	UnitID string
	Name   string
	Config map[string]any

	InputConnections  map[string][]ConnectionSource
	OutputConnections map[string][]string

	OutputNode    bool
	AlwaysExecute bool
	LazyInputs    []string

	SourceNodeID string
}

// UserInputIR is a pause point awaiting external input, per spec 3.3.
type UserInputIR struct {
	ID              string
	Name            string
	VariableName    string
	IsTrigger       bool
	TimeoutSeconds  int
	TimeoutBehavior TimeoutBehavior
	PredefinedText  string

	IncomingAgentIDs []string
	OutgoingAgentIDs []string
}

// OutputFileIR describes a file written at run end from an agent's output.
type OutputFileIR struct {
	Name     string
	FilePath string
	AgentID  string
}

// TeleporterPair links an OUT node in one tab to an IN node in another.
type TeleporterPair struct {
	Name      string
	OutNodeID string
	InNodeID  string
}

// WorkflowIR is the root of the compiled, validated workflow (spec 3.3).
type WorkflowIR struct {
	RootAgentID string
	AllAgents   map[string]*AgentIR

	OutputFiles []OutputFileIR
	Teleporters map[string]TeleporterPair
	UserInputs  []UserInputIR

	CustomNodes        []*CustomNodeIR
	ContextAggregators []*CustomNodeIR // context nodes that feed agents directly are folded in; standalone ones stay custom nodes
	VariableNodeIDs    []string

	GlobalVariables map[string]string

	HasStartNode bool
	HasEndNode   bool

	ProjectPath string
	TabIDs      []string
	Metadata    map[string]any
}

// RootAgent is a convenience accessor.
func (w *WorkflowIR) RootAgent() *AgentIR {
	if w == nil {
		return nil
	}
	return w.AllAgents[w.RootAgentID]
}
