package callback

import "log/slog"

// RunSync dispatches every handler attached to agentID at point p, in
// priority order. It is used for before/after_agent and before/after_model.
// A handler that errors is either logged-and-skipped (OnErrorContinue) or
// aborts the chain (OnErrorAbort, the default).
func RunSync(r *Registry, agentID string, p Point, data map[string]any) Verdict {
	for _, h := range r.HandlersFor(agentID, p) {
		v := h.Sync(agentID, data)
		if v.Outcome == OutcomeAbort && v.Err != nil && h.OnError == OnErrorContinue {
			slog.Warn("callback error ignored (on_error=continue)", "agent", agentID, "point", p, "extension", h.ExtensionID, "err", v.Err)
			continue
		}
		switch v.Outcome {
		case OutcomeContinue:
			continue
		case OutcomeReplace:
			if v.Data != nil {
				data = v.Data
			}
		default:
			return v
		}
	}
	return Verdict{Outcome: OutcomeContinue, Data: data}
}

// RunTool dispatches every handler attached to agentID at point p (before or
// after _tool), which may perform blocking I/O internally.
func RunTool(r *Registry, agentID, toolName string, p Point, data map[string]any) Verdict {
	for _, h := range r.HandlersFor(agentID, p) {
		v := h.Tool(agentID, toolName, data)
		if v.Outcome == OutcomeAbort && v.Err != nil && h.OnError == OnErrorContinue {
			slog.Warn("callback error ignored (on_error=continue)", "agent", agentID, "tool", toolName, "point", p, "extension", h.ExtensionID, "err", v.Err)
			continue
		}
		switch v.Outcome {
		case OutcomeContinue:
			continue
		case OutcomeReplace:
			if v.Data != nil {
				data = v.Data
			}
		default: // Skip or Abort short-circuit the remaining chain
			return v
		}
	}
	return Verdict{Outcome: OutcomeContinue, Data: data}
}
