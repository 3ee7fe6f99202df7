package shell

import (
	"context"
	"fmt"
	"time"
)

const UnitID = "shell_command"

// Config is the shell custom node's decoded configuration.
type Config struct {
	WorkingDirectory string            `mapstructure:"working_directory"`
	TimeoutSeconds   int               `mapstructure:"timeout_seconds"`
	OutputMode       OutputMode        `mapstructure:"output_mode"`
	MaxOutputSize    int               `mapstructure:"max_output_size"`
	Shell            string            `mapstructure:"shell"`
	ErrorBehavior    ErrorBehavior     `mapstructure:"error_behavior"`
	AllowedCommands  []string          `mapstructure:"allowed_commands"`
	Environment      map[string]string `mapstructure:"environment_variables"`
}

// Unit implements pkg/flowunit.Unit for a whitelisted shell command node.
// Inputs["command"] is the full command line to run; it is validated
// against cfg.AllowedCommands before anything is executed.
type Unit struct{}

func (Unit) UnitID() string { return UnitID }

func (Unit) Run(ctx context.Context, inputs map[string]any, rawConfig map[string]any) (map[string]any, error) {
	cfg, err := decodeShellConfig(rawConfig)
	if err != nil {
		return nil, err
	}

	cmdLine, _ := inputs["command"].(string)
	if cmdLine == "" {
		return nil, fmt.Errorf("shell node: no command provided")
	}

	validator := NewValidator(cfg.AllowedCommands)
	vr := validator.Validate(cmdLine)
	if !vr.Allowed {
		if cfg.ErrorBehavior == ErrorBehaviorFailFast {
			return nil, fmt.Errorf("shell command rejected: %s", vr.Error)
		}
		return map[string]any{"output": fmt.Sprintf("[command rejected: %s]", vr.Error), "exit_code": -1, "success": false}, nil
	}

	env := envSlice(cfg.Environment)
	executor := &Executor{
		WorkingDirectory: cfg.WorkingDirectory,
		Timeout:          time.Duration(cfg.TimeoutSeconds) * time.Second,
		OutputMode:       cfg.OutputMode,
		MaxOutputSize:    cfg.MaxOutputSize,
		Shell:            cfg.Shell,
		Env:              env,
	}
	result := executor.Execute(ctx, vr.Command, vr.Arguments)

	if !result.Success && cfg.ErrorBehavior == ErrorBehaviorFailFast {
		return nil, fmt.Errorf("shell command failed (exit %d): %s", result.ExitCode, result.Error)
	}

	return map[string]any{
		"output":    result.Output,
		"stdout":    result.Stdout,
		"stderr":    result.Stderr,
		"exit_code": result.ExitCode,
		"success":   result.Success,
		"error":     result.Error,
		"truncated": result.Truncated,
	}, nil
}

func envSlice(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}
