package runner

import (
	"fmt"

	"github.com/kadirpekel/adkflow/internal/callback"
	"github.com/kadirpekel/adkflow/internal/compiler/ir"
	"github.com/kadirpekel/adkflow/pkg/agent"
	"github.com/kadirpekel/adkflow/pkg/agent/llmagent"
	"github.com/kadirpekel/adkflow/pkg/agent/workflowagent"
)

// AgentFactory builds a live agent.Agent tree from a compiled WorkflowIR,
// delegating construction to the LLM SDK substrate (pkg/agent/*) per spec
// 4.13 item 6. Each agent's callback registry is frozen immediately after
// its SDK-facing callback functions are materialized (spec 4.9).
type AgentFactory struct {
	Callbacks *callback.Registry
	built     map[string]agent.Agent
}

// NewAgentFactory returns a factory whose built agents attach handlers from
// cb (may be nil for a workflow with no extension-provided callbacks).
func NewAgentFactory(cb *callback.Registry) *AgentFactory {
	if cb == nil {
		cb = callback.NewRegistry()
	}
	return &AgentFactory{Callbacks: cb, built: map[string]agent.Agent{}}
}

// Build constructs the full tree rooted at w.RootAgentID.
func (f *AgentFactory) Build(w *ir.WorkflowIR) (agent.Agent, error) {
	f.built = map[string]agent.Agent{}
	root := w.RootAgent()
	if root == nil {
		return nil, fmt.Errorf("workflow has no root agent")
	}
	return f.buildAgent(w, root.ID)
}

// BuildByID returns the live agent for id, building it (and any unbuilt
// sub-agents) on demand. Used to materialize a UserInputIR's
// outgoing_agent_ids after resume, since those agents sit outside the tree
// reachable from w.RootAgentID (spec 4.13 item 8).
func (f *AgentFactory) BuildByID(w *ir.WorkflowIR, id string) (agent.Agent, error) {
	if f.built == nil {
		f.built = map[string]agent.Agent{}
	}
	return f.buildAgent(w, id)
}

func (f *AgentFactory) buildAgent(w *ir.WorkflowIR, id string) (agent.Agent, error) {
	if a, ok := f.built[id]; ok {
		return a, nil
	}
	air, ok := w.AllAgents[id]
	if !ok {
		return nil, fmt.Errorf("agent %q not found in workflow", id)
	}

	subAgents := make([]agent.Agent, 0, len(air.SubAgents))
	for _, subID := range air.SubAgents {
		sub, err := f.buildAgent(w, subID)
		if err != nil {
			return nil, err
		}
		subAgents = append(subAgents, sub)
	}

	var built agent.Agent
	var err error
	switch air.Type {
	case ir.AgentTypeSequential:
		built, err = workflowagent.NewSequential(workflowagent.SequentialConfig{
			Name: air.Name, Description: air.Description, SubAgents: subAgents,
		})
	case ir.AgentTypeParallel:
		built, err = workflowagent.NewParallel(workflowagent.ParallelConfig{
			Name: air.Name, Description: air.Description, SubAgents: subAgents,
		})
	case ir.AgentTypeLoop:
		maxIter := air.MaxIterations
		if maxIter < 1 {
			maxIter = 1
		}
		built, err = workflowagent.NewLoop(workflowagent.LoopConfig{
			Name: air.Name, Description: air.Description, SubAgents: subAgents,
			MaxIterations: uint(maxIter),
		})
	default: // llm
		built, err = f.buildLLMAgent(air, subAgents)
	}
	if err != nil {
		return nil, fmt.Errorf("building agent %q: %w", air.Name, err)
	}
	f.built[id] = built
	return built, nil
}

func (f *AgentFactory) buildLLMAgent(air *ir.AgentIR, subAgents []agent.Agent) (agent.Agent, error) {
	llm, err := resolveModel(air.Model, air.Temperature)
	if err != nil {
		return nil, err
	}
	tools, err := buildTools(air.Tools)
	if err != nil {
		return nil, err
	}

	includeContents := llmagent.IncludeContentsDefault
	if air.IncludeContents == ir.IncludeContentsNone {
		includeContents = llmagent.IncludeContentsNone
	}

	cfg := llmagent.Config{
		Name:                     air.Name,
		Description:              air.Description,
		Model:                    llm,
		Instruction:              air.Instruction,
		GenerateConfig:           nil,
		Tools:                    tools,
		SubAgents:                subAgents,
		DisallowTransferToParent: air.DisallowTransferToParent,
		DisallowTransferToPeers:  air.DisallowTransferToPeers,
		IncludeContents:          includeContents,
		OutputKey:                air.OutputKey,
	}
	if air.OutputSchema != nil {
		cfg.OutputSchema = air.OutputSchema.Inline
	}
	if air.InputSchema != nil {
		cfg.InputSchema = air.InputSchema.Inline
	}

	attachAgentCallbacks(&cfg, f.Callbacks, air.ID)

	return llmagent.New(cfg)
}
