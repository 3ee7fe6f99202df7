package runner

import (
	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/adkflow/internal/callback"
	"github.com/kadirpekel/adkflow/pkg/agent"
	"github.com/kadirpekel/adkflow/pkg/agent/llmagent"
	"github.com/kadirpekel/adkflow/pkg/model"
	"github.com/kadirpekel/adkflow/pkg/tool"
)

// attachAgentCallbacks wires the extension-registered callback.Registry
// handlers for agentID into cfg's SDK-facing callback slots. before/after
// agent and model callbacks are structurally synchronous (spec 4.9) since
// the underlying SDK callback types carry no context.Context; tool
// callbacks may block.
func attachAgentCallbacks(cfg *llmagent.Config, reg *callback.Registry, agentID string) {
	cfg.BeforeAgentCallbacks = append(cfg.BeforeAgentCallbacks, func(cctx agent.CallbackContext) (*a2a.Message, error) {
		v := callback.RunSync(reg, agentID, callback.PointBeforeAgent, map[string]any{})
		return verdictToMessage(v)
	})
	cfg.AfterAgentCallbacks = append(cfg.AfterAgentCallbacks, func(cctx agent.CallbackContext) (*a2a.Message, error) {
		v := callback.RunSync(reg, agentID, callback.PointAfterAgent, map[string]any{})
		return verdictToMessage(v)
	})
	cfg.BeforeModelCallbacks = append(cfg.BeforeModelCallbacks, func(cctx agent.CallbackContext, req *model.Request) (*model.Response, error) {
		v := callback.RunSync(reg, agentID, callback.PointBeforeModel, map[string]any{})
		if v.Outcome == callback.OutcomeAbort {
			return nil, v.Err
		}
		return nil, nil
	})
	cfg.AfterModelCallbacks = append(cfg.AfterModelCallbacks, func(cctx agent.CallbackContext, resp *model.Response, err error) (*model.Response, error) {
		v := callback.RunSync(reg, agentID, callback.PointAfterModel, map[string]any{})
		if v.Outcome == callback.OutcomeAbort {
			return nil, v.Err
		}
		return nil, nil
	})
	cfg.BeforeToolCallbacks = append(cfg.BeforeToolCallbacks, func(tctx tool.Context, t tool.Tool, args map[string]any) (map[string]any, error) {
		v := callback.RunTool(reg, agentID, t.Name(), callback.PointBeforeTool, map[string]any{"args": args})
		switch v.Outcome {
		case callback.OutcomeAbort:
			return nil, v.Err
		case callback.OutcomeSkip:
			return v.Data, nil
		case callback.OutcomeReplace:
			if replaced, ok := v.Data["args"].(map[string]any); ok {
				return replaced, nil
			}
		}
		return nil, nil
	})
	cfg.AfterToolCallbacks = append(cfg.AfterToolCallbacks, func(tctx tool.Context, t tool.Tool, args, result map[string]any, err error) (map[string]any, error) {
		v := callback.RunTool(reg, agentID, t.Name(), callback.PointAfterTool, map[string]any{"result": result})
		if v.Outcome == callback.OutcomeReplace {
			if replaced, ok := v.Data["result"].(map[string]any); ok {
				return replaced, nil
			}
		}
		return nil, nil
	})
}

func verdictToMessage(v callback.Verdict) (*a2a.Message, error) {
	switch v.Outcome {
	case callback.OutcomeAbort:
		return nil, v.Err
	case callback.OutcomeSkip, callback.OutcomeReplace:
		reason, _ := v.Data["reason"].(string)
		return agent.NewTextContent(reason, a2a.MessageRoleAssistant).ToMessage(), nil
	default:
		return nil, nil
	}
}
