package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/adkflow/internal/compiler/ir"
	"github.com/kadirpekel/adkflow/pkg/agent"
	pkgrunner "github.com/kadirpekel/adkflow/pkg/runner"
	"github.com/kadirpekel/adkflow/pkg/session"
)

// UserInputRequest describes one suspended UserInputIR node awaiting an
// externally-resolved value (spec 4.13 item 8).
type UserInputRequest struct {
	ID             string
	Name           string
	VariableName   string
	TimeoutSeconds int
}

// UserInputResolver supplies the answer for a suspended user-input node.
// Resolve should block until a value is available, ctx is cancelled, or the
// deadline ctx carries (set by the Runner from TimeoutSeconds) elapses.
type UserInputResolver interface {
	Resolve(ctx context.Context, req UserInputRequest) (string, error)
}

// blockingResolver is used when Runner.UserInput is nil: it never resolves
// on its own, so the outcome is entirely decided by the node's
// timeout_seconds/timeout_behavior.
type blockingResolver struct{}

func (blockingResolver) Resolve(ctx context.Context, _ UserInputRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// processUserInputs walks w.UserInputs looking for non-trigger nodes whose
// incoming_agent_ids were all reached during the turn just streamed
// (finishReasons is keyed by agent name). Each reached node suspends via
// handleUserInput, then its outgoing_agent_ids run in sequence against the
// same session, appending their visible output (spec 4.13 item 8).
func (r *Runner) processUserInputs(
	ctx context.Context,
	w *ir.WorkflowIR,
	factory *AgentFactory,
	sessionService session.Service,
	runID string,
	finishReasons map[string]map[string]any,
	emit func(EventType, map[string]any),
) (string, error) {
	var out strings.Builder

	for _, ui := range w.UserInputs {
		if ui.IsTrigger || !allReached(ui.IncomingAgentIDs, w, finishReasons) {
			continue
		}

		value, err := r.handleUserInput(ctx, ui, emit)
		if err != nil {
			return "", err
		}
		emit(EventUserInputResolved, map[string]any{"id": ui.ID, "name": ui.Name})

		content := agent.NewTextContent(value, a2a.MessageRoleUser)
		for _, agentID := range ui.OutgoingAgentIDs {
			built, err := factory.BuildByID(w, agentID)
			if err != nil {
				return "", &ExecutionError{Stage: "user_input", Msg: "building resumed agent " + agentID, Err: err}
			}
			sdkRunner, err := pkgrunner.New(pkgrunner.Config{
				AppName:        "adkflow",
				Agent:          built,
				SessionService: sessionService,
			})
			if err != nil {
				return "", &ExecutionError{Stage: "user_input", Msg: "starting resumed agent " + agentID, Err: err}
			}
			if res := streamAgentTurn(ctx, sdkRunner, runID, content, emit, &out, finishReasons); res != nil {
				if res.Status == StatusCancelled {
					return "", &CancellationError{RunID: runID}
				}
				return "", fmt.Errorf("%s", res.Error)
			}
		}
	}

	return out.String(), nil
}

// allReached reports whether every incoming agent id already has a recorded
// finish reason, i.e. the execution path actually arrived at this pause
// point rather than taking a branch that never reaches it.
func allReached(incomingAgentIDs []string, w *ir.WorkflowIR, finishReasons map[string]map[string]any) bool {
	if len(incomingAgentIDs) == 0 {
		return false
	}
	for _, id := range incomingAgentIDs {
		air, ok := w.AllAgents[id]
		if !ok {
			return false
		}
		if _, done := finishReasons[air.Name]; !done {
			return false
		}
	}
	return true
}

// handleUserInput emits user_input_required and awaits either the injected
// resolver or, on timeout, the node's configured timeout_behavior.
func (r *Runner) handleUserInput(ctx context.Context, ui ir.UserInputIR, emit func(EventType, map[string]any)) (string, error) {
	emit(EventUserInputRequired, map[string]any{
		"id":               ui.ID,
		"name":             ui.Name,
		"variable_name":    ui.VariableName,
		"timeout_seconds":  ui.TimeoutSeconds,
		"timeout_behavior": string(ui.TimeoutBehavior),
	})

	waitCtx := ctx
	if ui.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, time.Duration(ui.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	resolver := r.UserInput
	if resolver == nil {
		resolver = blockingResolver{}
	}

	value, err := resolver.Resolve(waitCtx, UserInputRequest{
		ID: ui.ID, Name: ui.Name, VariableName: ui.VariableName, TimeoutSeconds: ui.TimeoutSeconds,
	})
	if err == nil {
		return value, nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err() // outer cancellation, not a pause-local timeout
	}
	if waitCtx.Err() != context.DeadlineExceeded {
		return "", &ExecutionError{Stage: "user_input", Msg: "resolving " + ui.Name, Err: err}
	}

	switch ui.TimeoutBehavior {
	case ir.TimeoutBehaviorPredefinedText:
		return ui.PredefinedText, nil
	default:
		return "", &ExecutionError{Stage: "user_input", Msg: fmt.Sprintf("%q timed out waiting for input", ui.Name), Err: waitCtx.Err()}
	}
}
