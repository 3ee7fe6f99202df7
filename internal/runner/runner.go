package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/attribute"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/adkflow/internal/callback"
	"github.com/kadirpekel/adkflow/internal/compiler/flow"
	"github.com/kadirpekel/adkflow/internal/compiler/graph"
	"github.com/kadirpekel/adkflow/internal/compiler/ir"
	"github.com/kadirpekel/adkflow/internal/compiler/project"
	"github.com/kadirpekel/adkflow/internal/compiler/substitute"
	"github.com/kadirpekel/adkflow/internal/compiler/validate"
	"github.com/kadirpekel/adkflow/internal/execgraph"
	"github.com/kadirpekel/adkflow/internal/extension"
	"github.com/kadirpekel/adkflow/internal/hook"
	"github.com/kadirpekel/adkflow/pkg/agent"
	pkgrunner "github.com/kadirpekel/adkflow/pkg/runner"
	"github.com/kadirpekel/adkflow/pkg/session"
)

// Runner orchestrates one workflow run end to end (spec 4.13): compile,
// pre-agent custom nodes, the live agent tree, user-input suspend/resume,
// post-agent custom nodes, output files.
type Runner struct {
	Extensions *extension.Registry
	Hooks      *hook.Registry
	Callbacks  *callback.Registry
	Cache      *execgraph.Cache

	// UserInput resolves suspended UserInputIR nodes (spec 4.13 item 8). A
	// nil value blocks until timeout_seconds elapses, then falls back to
	// timeout_behavior.
	UserInput UserInputResolver
}

// New returns a Runner backed by the given extension/hook registries and an
// execution cache of the given capacity (0 uses the package default).
func New(extensions *extension.Registry, hooks *hook.Registry, callbacks *callback.Registry, cacheCapacity int) (*Runner, error) {
	cache, err := execgraph.NewCache(cacheCapacity)
	if err != nil {
		return nil, err
	}
	if hooks == nil {
		hooks = hook.NewRegistry()
	}
	if callbacks == nil {
		callbacks = callback.NewRegistry()
	}
	return &Runner{Extensions: extensions, Hooks: hooks, Callbacks: callbacks, Cache: cache}, nil
}

// Run compiles and executes the project at projectPath with the given user
// prompt (spec 4.13's eleven numbered steps).
func (r *Runner) Run(ctx context.Context, projectPath, prompt string) (result *RunResult) {
	runID := uuid.NewString()
	start := time.Now()
	var events []RunEvent
	emit := func(t EventType, data map[string]any) {
		events = append(events, newEvent(t, data))
	}

	defer func() {
		if result != nil {
			result.DurationMS = time.Since(start).Milliseconds()
			result.Events = events
		}
	}()

	if ctx.Err() != nil {
		emit(EventError, map[string]any{"error": ctx.Err().Error()})
		return &RunResult{RunID: runID, Status: StatusCancelled, Error: ctx.Err().Error(), Events: events}
	}

	loadDotEnv(projectPath)
	emit(EventRunStart, map[string]any{"project": projectPath})

	proj, err := project.Load(projectPath, project.DefaultOptions())
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "compile"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}

	tracing, err := setupTracing(projectPath, proj)
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "tracing_setup"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}
	defer tracing.shutdown(context.Background())

	runCtx, runSpan := tracing.tracer.Start(ctx, "run")
	runSpan.SetAttributes(
		attribute.String("run_id", runID),
		attribute.String("project", projectPath),
	)
	defer func() { endSpan(runSpan, err) }()
	ctx = runCtx

	w, err := r.compile(proj)
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "compile"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}

	exGraph := execgraph.Build(w)
	preIDs, postIDs := partitionCustomNodes(w, exGraph)

	preExec := &execgraph.Executor{Graph: exGraph, Units: r.Extensions, Cache: r.Cache, Hooks: r.Hooks, RunID: runID}
	preResults, err := preExec.Execute(ctx, preIDs, nil)
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "pre_agent_nodes"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}

	factory := NewAgentFactory(r.Callbacks)
	rootAgent, err := factory.Build(w)
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "agent_factory"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}

	sessionService := session.InMemoryService()
	sdkRunner, err := pkgrunner.New(pkgrunner.Config{
		AppName:        "adkflow",
		Agent:          rootAgent,
		SessionService: sessionService,
	})
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "runner_init"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}

	message := composeUserMessage(w, preResults, prompt)
	content := agent.NewTextContent(message, a2a.MessageRoleUser)

	var finalOutput strings.Builder
	finishReasons := map[string]map[string]any{}
	turnResult := streamAgentTurn(ctx, sdkRunner, runID, content, emit, &finalOutput, finishReasons)
	if turnResult != nil {
		return turnResult
	}

	extraOutput, err := r.processUserInputs(ctx, w, factory, sessionService, runID, finishReasons, emit)
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "user_input"})
		if _, ok := err.(*CancellationError); ok {
			return &RunResult{RunID: runID, Status: StatusCancelled, Error: err.Error(), Events: events}
		}
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}
	finalOutput.WriteString(extraOutput)

	externalResults := map[string]map[string]any{}
	for agentID, air := range w.AllAgents {
		if fr, ok := finishReasons[air.Name]; ok {
			externalResults[agentID] = fr
		}
	}

	postExec := &execgraph.Executor{Graph: exGraph, Units: r.Extensions, Cache: r.Cache, Hooks: r.Hooks, RunID: runID}
	_, err = postExec.Execute(ctx, postIDs, externalResults)
	if err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "post_agent_nodes"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}

	if err = writeOutputFiles(projectPath, w, finishReasons); err != nil {
		emit(EventError, map[string]any{"error": err.Error(), "stage": "output_files"})
		return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(err).Error(), Events: events}
	}

	emit(EventRunComplete, map[string]any{"run_id": runID})
	return &RunResult{RunID: runID, Status: StatusCompleted, Output: finalOutput.String(), Events: events}
}

// streamAgentTurn drains one sdkRunner.Run invocation, emitting
// agent_output/agent_end events, accumulating the visible text into out, and
// recording each completed agent's finish reason into finishReasons keyed by
// agent name (spec 4.13 item 7, reused for the resumed turns of item 8). It
// returns a terminal *RunResult on cancellation or failure, nil to continue.
func streamAgentTurn(
	ctx context.Context,
	sdkRunner *pkgrunner.Runner,
	runID string,
	content *agent.Content,
	emit func(EventType, map[string]any),
	out *strings.Builder,
	finishReasons map[string]map[string]any,
) *RunResult {
	for ev, runErr := range sdkRunner.Run(ctx, "adkflow-user", runID, content, agent.RunConfig{}) {
		if ctx.Err() != nil {
			emit(EventError, map[string]any{"error": ctx.Err().Error()})
			return &RunResult{RunID: runID, Status: StatusCancelled, Error: ctx.Err().Error()}
		}
		if runErr != nil {
			emit(EventError, map[string]any{"error": runErr.Error()})
			return &RunResult{RunID: runID, Status: StatusFailed, Error: FriendlyError(runErr).Error()}
		}
		if ev == nil {
			continue
		}
		text := ev.TextContent()
		emit(EventAgentOutput, map[string]any{"agent": ev.Author, "text": text})
		if text != "" {
			out.WriteString(text)
		}
		if ev.TurnComplete {
			finishReasons[ev.Author] = map[string]any{
				"output": text,
				"finish-reason": map[string]any{
					"name":        "stop",
					"description": "turn completed",
				},
			}
			emit(EventAgentEnd, map[string]any{"agent": ev.Author})
		}
	}
	return nil
}

func loadDotEnv(projectPath string) {
	envPath := filepath.Join(projectPath, ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	}
}

// compile runs the remainder of the compiler pipeline against an
// already-loaded project: parser -> builder -> transformer -> substitution
// -> validator. Substitution runs against the compiled WorkflowIR rather
// than the raw project data, since global variables are themselves
// discovered by the transformer and spec 3.5's idempotence invariant is
// phrased in terms of the IR.
func (r *Runner) compile(proj *project.Project) (*ir.WorkflowIR, error) {
	pp := flow.Parse(proj)

	g, err := graph.Build(pp)
	if err != nil {
		return nil, err
	}

	w, err := ir.Transform(g, proj)
	if err != nil {
		return nil, err
	}

	substitute.ApplyToIR(w, w.GlobalVariables)

	result, verr := validate.Validate(w)
	if verr != nil {
		return nil, verr
	}
	_ = result // warnings are non-fatal; callers may inspect via compile diagnostics in a future CLI surface

	return w, nil
}

// partitionCustomNodes splits custom nodes into pre-agent (no input
// connection sourced from an agent) and post-agent (at least one), per spec
// 9's explicitly-flagged open question: read the connection map directly
// rather than inferring a simplified rule.
func partitionCustomNodes(w *ir.WorkflowIR, g *execgraph.Graph) (pre, post []string) {
	agentIDs := map[string]bool{}
	for id := range w.AllAgents {
		agentIDs[id] = true
	}
	allCustom := append(append([]*ir.CustomNodeIR{}, w.CustomNodes...), w.ContextAggregators...)
	for _, cn := range allCustom {
		fedByAgent := false
		for _, sources := range cn.InputConnections {
			for _, src := range sources {
				if agentIDs[src.NodeID] {
					fedByAgent = true
				}
			}
		}
		if fedByAgent {
			post = append(post, cn.ID)
		} else {
			pre = append(pre, cn.ID)
		}
	}
	return pre, post
}

// composeUserMessage builds the single user message the root agent is
// invoked with: trigger user-input variables, then pre-agent custom-node
// outputs as "[node.port]: value" lines, then the caller's prompt (spec
// 4.13 item 7).
func composeUserMessage(w *ir.WorkflowIR, preResults map[string]map[string]any, prompt string) string {
	var b strings.Builder
	for _, ui := range w.UserInputs {
		if ui.IsTrigger {
			fmt.Fprintf(&b, "%s\n", ui.VariableName)
		}
	}
	for nodeID, outputs := range preResults {
		for port, value := range outputs {
			fmt.Fprintf(&b, "[%s.%s]: %v\n", nodeID, port, value)
		}
	}
	if prompt == "" {
		prompt = "Execute the workflow."
	}
	b.WriteString(prompt)
	return b.String()
}

func writeOutputFiles(projectRoot string, w *ir.WorkflowIR, finishReasons map[string]map[string]any) error {
	for _, of := range w.OutputFiles {
		air := w.AllAgents[of.AgentID]
		if air == nil {
			continue
		}
		fr, ok := finishReasons[air.Name]
		if !ok {
			continue
		}
		output, _ := fr["output"].(string)

		abs := filepath.Join(projectRoot, of.FilePath)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return &ExecutionError{Stage: "output_files", Msg: "mkdir", Err: err}
		}
		if err := os.WriteFile(abs, []byte(output), 0o644); err != nil {
			return &ExecutionError{Stage: "output_files", Msg: "write " + of.FilePath, Err: err}
		}
	}
	return nil
}
