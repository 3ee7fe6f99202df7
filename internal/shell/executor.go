package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// OutputMode controls which stream(s) of a subprocess are captured.
type OutputMode string

const (
	OutputCombined OutputMode = "combined"
	OutputStdout   OutputMode = "stdout"
	OutputStderr   OutputMode = "stderr"
	OutputBoth     OutputMode = "both" // stdout and stderr kept separate
)

// ErrorBehavior controls how a non-zero exit is surfaced to the caller.
type ErrorBehavior string

const (
	ErrorBehaviorPassToModel ErrorBehavior = "pass_to_model"
	ErrorBehaviorFailFast    ErrorBehavior = "fail_fast"
)

// Result is one command's outcome.
type Result struct {
	Output    string
	Stdout    string
	Stderr    string
	ExitCode  int
	Success   bool
	Error     string
	Truncated bool
}

// Executor runs a validated command line as a subprocess with a bounded
// timeout and output size, UTF-8-decoding with replacement the way the
// original's ShellExecutor does.
type Executor struct {
	WorkingDirectory string
	Timeout          time.Duration
	OutputMode       OutputMode
	MaxOutputSize    int
	Shell            string // e.g. "/bin/sh"; empty uses exec.CommandContext(name, args...) directly
	Env              []string
}

// Execute runs command/args, killing the process if it exceeds e.Timeout.
func (e *Executor) Execute(ctx context.Context, command string, args []string) Result {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if e.Shell != "" {
		full := append([]string{command}, args...)
		cmd = exec.CommandContext(runCtx, e.Shell, "-c", strings.Join(full, " "))
	} else {
		cmd = exec.CommandContext(runCtx, command, args...)
	}
	if e.WorkingDirectory != "" {
		cmd.Dir = e.WorkingDirectory
	}
	if len(e.Env) > 0 {
		cmd.Env = e.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return Result{ExitCode: -1, Success: false, Error: fmt.Sprintf("command timed out after %s", timeout)}
	}

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return Result{ExitCode: -1, Success: false, Error: err.Error()}
	}

	out := stdout.String()
	errOut := stderr.String()
	output, truncated := selectOutput(e.OutputMode, out, errOut)
	if e.MaxOutputSize > 0 && len(output) > e.MaxOutputSize {
		output = output[:e.MaxOutputSize] + "\n[... output truncated ...]"
		truncated = true
	}

	return Result{
		Output:    output,
		Stdout:    out,
		Stderr:    errOut,
		ExitCode:  exitCode,
		Success:   exitCode == 0,
		Truncated: truncated,
	}
}

func selectOutput(mode OutputMode, stdout, stderr string) (string, bool) {
	switch mode {
	case OutputStdout:
		return stdout, false
	case OutputStderr:
		return stderr, false
	case OutputBoth:
		return stdout + "\n--- stderr ---\n" + stderr, false
	default: // combined
		return stdout + stderr, false
	}
}
