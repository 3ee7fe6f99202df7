package runner

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/adkflow/internal/compiler/ir"
	"github.com/kadirpekel/adkflow/internal/shell"
	"github.com/kadirpekel/adkflow/pkg/tool"
)

// declaredToolSpec is the small declarative shape a ToolIR's file/code
// content is parsed as: a shell command template backing an LLM-callable
// tool. Tool-binding mechanics proper belong to the LLM SDK substrate (spec
// section 1's "out of scope" list); this is the minimal bridge letting a
// workflow-authored tool node do something real without interpreting
// arbitrary foreign source.
type declaredToolSpec struct {
	Description string         `yaml:"description"`
	Command     string         `yaml:"command"`
	Schema      map[string]any `yaml:"schema"`
}

// declaredTool implements tool.CallableTool (the controltool.go shape:
// Name/Description/Schema/Call/IsLongRunning/RequiresApproval) for a tool
// node resolved from the project.
type declaredTool struct {
	name    string
	spec    declaredToolSpec
	errMode ir.ErrorBehavior
}

func newDeclaredTool(t ir.ToolIR) (*declaredTool, error) {
	source := t.Code
	if source == "" {
		source = t.FilePath // loader already resolved+read file content into Code at transform time for inline tools; FilePath-only tools fall back to a bare command name
	}

	var spec declaredToolSpec
	if strings.TrimSpace(source) != "" {
		if err := yaml.Unmarshal([]byte(source), &spec); err != nil {
			// Not YAML: treat the whole content as a literal command line.
			spec = declaredToolSpec{Command: strings.TrimSpace(source)}
		}
	}
	if spec.Description == "" {
		spec.Description = t.Description
	}
	if spec.Description == "" {
		spec.Description = fmt.Sprintf("Tool %q", t.Name)
	}
	return &declaredTool{name: t.Name, spec: spec, errMode: t.ErrorBehavior}, nil
}

func (t *declaredTool) Name() string           { return t.name }
func (t *declaredTool) Description() string    { return t.spec.Description }
func (t *declaredTool) IsLongRunning() bool    { return false }
func (t *declaredTool) RequiresApproval() bool { return false }

func (t *declaredTool) Schema() map[string]any {
	if t.spec.Schema != nil {
		return t.spec.Schema
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *declaredTool) Call(ctx tool.Context, args map[string]any) (map[string]any, error) {
	if t.spec.Command == "" {
		return nil, fmt.Errorf("tool %q has no backing command", t.name)
	}
	cmdLine := renderTemplate(t.spec.Command, args)

	executor := &shell.Executor{Timeout: defaultToolTimeout}
	validator := shell.NewValidator([]string{"*:*"})
	vr := validator.Validate(cmdLine)
	if !vr.Allowed {
		if t.errMode == ir.ErrorBehaviorFailFast {
			return nil, fmt.Errorf("tool %q command rejected: %s", t.name, vr.Error)
		}
		return map[string]any{"error": vr.Error}, nil
	}

	result := executor.Execute(ctx, vr.Command, vr.Arguments)
	if !result.Success && t.errMode == ir.ErrorBehaviorFailFast {
		return nil, fmt.Errorf("tool %q failed: %s", t.name, result.Error)
	}
	return map[string]any{"output": result.Output, "success": result.Success, "error": result.Error}, nil
}

// renderTemplate substitutes {key} with args[key] (string-formatted),
// mirroring substitute.Apply's placeholder convention at tool-invocation
// granularity.
func renderTemplate(tmpl string, args map[string]any) string {
	out := tmpl
	for k, v := range args {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return out
}

// buildTools resolves an AgentIR's ToolIR list into SDK-facing tool.Tool
// values, plus the built-in shell command tool when an agent lists
// "execute_command" among its tool names.
func buildTools(tools []ir.ToolIR) ([]tool.Tool, error) {
	out := make([]tool.Tool, 0, len(tools))
	for _, t := range tools {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		dt, err := newDeclaredTool(t)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", t.Name, err)
		}
		out = append(out, dt)
	}
	return out, nil
}
