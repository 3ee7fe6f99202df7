// Package cerr defines the error kinds shared by every compiler stage
// (loader, parser, builder, transformer, validator) per spec section 7.
//
// Each kind is a distinct type so callers can use errors.As to branch on
// stage without string-matching messages.
package cerr

import "fmt"

// Stage identifies which compiler stage raised an error.
type Stage string

const (
	StageLoader      Stage = "loader"
	StageParser      Stage = "parser"
	StageBuilder     Stage = "builder"
	StageTransformer Stage = "transformer"
	StageValidator   Stage = "validator"
)

// CompilationError wraps a failure in loader/builder/transformer with the
// stage it occurred in.
type CompilationError struct {
	Stage Stage
	Msg   string
	Err   error
}

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

func (e *CompilationError) Unwrap() error { return e.Err }

func NewCompilationError(stage Stage, msg string, err error) *CompilationError {
	return &CompilationError{Stage: stage, Msg: msg, Err: err}
}

// ValidationIssue is a single structural problem found by the validator.
// Fatal issues abort compilation; non-fatal ones are warnings.
type ValidationIssue struct {
	Fatal   bool
	Message string
	NodeID  string
}

// ValidationError aggregates fatal ValidationIssues.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", e.Issues[0].Message, len(e.Issues)-1)
}

// PromptLoadError reports a failure loading a prompt/context/tool/callback
// file referenced by a node, including sandbox-escape violations.
type PromptLoadError struct {
	NodeID string
	Path   string
	Msg    string
}

func (e *PromptLoadError) Error() string {
	return fmt.Sprintf("prompt load error at node %s (%s): %s", e.NodeID, e.Path, e.Msg)
}

// ToolLoadError reports a failure loading a tool file, including
// sandbox-escape and missing-file cases.
type ToolLoadError struct {
	NodeID string
	Path   string
	Msg    string
}

func (e *ToolLoadError) Error() string {
	return fmt.Sprintf("tool load error at node %s (%s): %s", e.NodeID, e.Path, e.Msg)
}
