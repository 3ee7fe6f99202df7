package shell

import (
	"fmt"

	"github.com/kadirpekel/adkflow/pkg/tool"
)

// CommandTool exposes the shell whitelist/executor pair directly as an
// agent-callable tool.Tool, for agents that need to run commands outside
// the custom-node graph (grounded on pkg/tool/controltool's minimal
// Name/Description/Schema/Call/IsLongRunning/RequiresApproval shape).
type CommandTool struct {
	validator *Validator
	executor  *Executor
}

// NewCommandTool builds a CommandTool whose whitelist is the given
// "command:args_glob" lines and whose subprocesses run under executor.
func NewCommandTool(allowedCommands []string, executor *Executor) *CommandTool {
	return &CommandTool{
		validator: NewValidator(allowedCommands),
		executor:  executor,
	}
}

func (t *CommandTool) Name() string { return "execute_command" }

func (t *CommandTool) Description() string {
	return "Executes a whitelisted shell command and returns its output."
}

func (t *CommandTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The full command line to execute, e.g. \"ls -la\".",
			},
		},
		"required": []string{"command"},
	}
}

func (t *CommandTool) IsLongRunning() bool    { return false }
func (t *CommandTool) RequiresApproval() bool { return false }

func (t *CommandTool) Call(ctx tool.Context, args map[string]any) (map[string]any, error) {
	cmdLine, _ := args["command"].(string)
	if cmdLine == "" {
		return nil, fmt.Errorf("execute_command: missing required argument %q", "command")
	}

	vr := t.validator.Validate(cmdLine)
	if !vr.Allowed {
		return map[string]any{"allowed": false, "error": vr.Error}, nil
	}

	result := t.executor.Execute(ctx, vr.Command, vr.Arguments)
	return map[string]any{
		"output":    result.Output,
		"exit_code": result.ExitCode,
		"success":   result.Success,
		"error":     result.Error,
		"truncated": result.Truncated,
	}, nil
}
