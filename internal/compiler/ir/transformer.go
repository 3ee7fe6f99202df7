package ir

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/kadirpekel/adkflow/internal/compiler/cerr"
	"github.com/kadirpekel/adkflow/internal/compiler/graph"
	"github.com/kadirpekel/adkflow/internal/compiler/project"
)

// Transform builds a WorkflowIR from a flattened WorkflowGraph, resolving
// instructions, tools, composite-agent wiring, and the root-agent tree
// (spec section 4.4).
func Transform(g *graph.WorkflowGraph, p *project.Project) (*WorkflowIR, error) {
	w := &WorkflowIR{
		AllAgents:       map[string]*AgentIR{},
		Teleporters:     map[string]TeleporterPair{},
		GlobalVariables: map[string]string{},
		ProjectPath:     p.Path,
		Metadata:        map[string]any{},
	}
	for _, t := range p.Tabs {
		w.TabIDs = append(w.TabIDs, t.ID)
	}
	for name, tp := range g.Teleporters {
		w.Teleporters[name] = TeleporterPair{Name: tp.Name, OutNodeID: tp.OutNodeID, InNodeID: tp.InNodeID}
	}

	for id, n := range g.Nodes {
		switch n.Type {
		case "variable":
			w.VariableNodeIDs = append(w.VariableNodeIDs, id)
			if name, ok := n.Data["name"].(string); ok {
				if val, ok := n.Data["value"].(string); ok {
					w.GlobalVariables[name] = val
				}
			}
		case "start":
			w.HasStartNode = true
		case "end":
			w.HasEndNode = true
		}
	}

	for id, n := range g.Nodes {
		if n.Type != "agent" {
			continue
		}
		agent, err := transformAgent(g, p, id, n)
		if err != nil {
			return nil, err
		}
		w.AllAgents[id] = agent
	}

	for id, n := range g.Nodes {
		if n.Type != "custom" {
			continue
		}
		cn := transformCustomNode(g, id, n)
		if isContextAggregator(n.UnitID) {
			w.ContextAggregators = append(w.ContextAggregators, cn)
		} else {
			w.CustomNodes = append(w.CustomNodes, cn)
		}
	}

	for id, n := range g.Nodes {
		if n.Type != "outputFile" {
			continue
		}
		name, _ := n.Data["name"].(string)
		filePath, _ := n.Data["file_path"].(string)
		agentID := upstreamAgentID(g, id)
		w.OutputFiles = append(w.OutputFiles, OutputFileIR{Name: name, FilePath: filePath, AgentID: agentID})
	}

	for id, n := range g.Nodes {
		if n.Type != "userInput" {
			continue
		}
		ui := transformUserInput(g, id, n)
		if len(ui.OutgoingAgentIDs) == 0 && !ui.IsTrigger {
			continue // spec: skip userInput nodes with no outgoing agent connection
		}
		w.UserInputs = append(w.UserInputs, ui)
	}

	populateUpstreamOutputKeys(g, w)

	root, err := buildRootAgent(g, w)
	if err != nil {
		return nil, err
	}
	w.RootAgentID = root

	return w, nil
}

func isContextAggregator(unitID string) bool {
	return unitID == "context_aggregator"
}

func upstreamAgentID(g *graph.WorkflowGraph, outputFileNodeID string) string {
	for _, e := range g.EdgesTo(outputFileNodeID) {
		if n, ok := g.Nodes[e.Source]; ok && n.Type == "agent" {
			return e.Source
		}
	}
	return ""
}

// transformAgent resolves one agent node's full configuration: type, model,
// concatenated instruction, tools, composite/loop tunables, planner/executor/
// http_options/callbacks, and schema references.
func transformAgent(g *graph.WorkflowGraph, p *project.Project, id string, n *graph.GraphNode) (*AgentIR, error) {
	d := n.Data

	agentType := AgentTypeLLM
	if t, ok := d["agent_type"].(string); ok && t != "" {
		agentType = AgentType(t)
	}

	a := &AgentIR{
		ID:           id,
		SourceNodeID: id,
	}
	if name, ok := d["name"].(string); ok {
		a.Name = name
	} else {
		a.Name = id
	}
	a.Type = agentType
	if model, ok := d["model"].(string); ok {
		a.Model = model
	}
	if temp, ok := d["temperature"].(float64); ok {
		a.Temperature = temp
	}
	if desc, ok := d["description"].(string); ok {
		a.Description = desc
	}
	if maxIter, ok := d["max_iterations"].(float64); ok {
		a.MaxIterations = int(maxIter)
	} else if a.Type == AgentTypeLoop {
		a.MaxIterations = 1
	}
	a.DisallowTransferToParent, _ = d["disallow_transfer_to_parent"].(bool)
	a.DisallowTransferToPeers, _ = d["disallow_transfer_to_peers"].(bool)
	a.StripContents, _ = d["strip_contents"].(bool)
	a.IncludeContents = normalizeIncludeContents(d["include_contents"])

	if key, ok := d["output_key"].(string); ok {
		a.OutputKey = strings.Trim(key, "{}")
	}

	a.Instruction = concatInstruction(g, id)

	tools, err := resolveTools(p, g, id)
	if err != nil {
		return nil, err
	}
	a.Tools = tools

	a.Planner = decodePlanner(d)
	a.CodeExecutor = decodeCodeExecutor(d)
	a.HTTPOptions = decodeHTTPOptions(d)
	a.Callbacks = decodeCallbacks(d)

	if schema, ok := d["output_schema"]; ok {
		a.OutputSchema = decodeSchemaSource(schema)
	}
	if schema, ok := d["input_schema"]; ok {
		a.InputSchema = decodeSchemaSource(schema)
	}

	for _, e := range g.EdgesFromWithSemantics(id, graph.SemanticSequential) {
		if tgt, ok := g.Nodes[e.Target]; ok && tgt.Type == "agent" {
			a.SubAgents = append(a.SubAgents, e.Target)
		}
	}
	for _, e := range g.EdgesFromWithSemantics(id, graph.SemanticParallel) {
		if tgt, ok := g.Nodes[e.Target]; ok && tgt.Type == "agent" {
			a.SubAgents = append(a.SubAgents, e.Target)
		}
	}

	return a, nil
}

// normalizeIncludeContents applies spec 4.4's coercion: bool true -> default,
// bool false -> none, string "none" passes through, anything else -> default.
func normalizeIncludeContents(v any) IncludeContents {
	switch t := v.(type) {
	case bool:
		if t {
			return IncludeContentsDefault
		}
		return IncludeContentsNone
	case string:
		if IncludeContents(t) == IncludeContentsNone {
			return IncludeContentsNone
		}
		return IncludeContentsDefault
	default:
		return IncludeContentsDefault
	}
}

// concatInstruction joins every prompt/context/variable node feeding this
// agent, in edge-appearance order: context nodes are prefixed "## Context",
// variable nodes rendered as "{name}: {value}".
func concatInstruction(g *graph.WorkflowGraph, agentID string) string {
	var parts []string
	for _, e := range g.EdgesToWithSemantics(agentID, graph.SemanticContext) {
		src, ok := g.Nodes[e.Source]
		if !ok {
			continue
		}
		switch src.Type {
		case "prompt":
			if text, ok := src.Data["text"].(string); ok {
				parts = append(parts, text)
			}
		case "context":
			if text, ok := src.Data["text"].(string); ok {
				parts = append(parts, "## Context\n"+text)
			}
		case "variable":
			name, _ := src.Data["name"].(string)
			value, _ := src.Data["value"].(string)
			parts = append(parts, fmt.Sprintf("{%s}: %s", name, value))
		}
	}
	return strings.Join(parts, "\n\n")
}

// resolveTools loads each connected tool node's source (file or inline code)
// and maps it onto a ToolIR, enforcing the file-xor-code invariant.
func resolveTools(p *project.Project, g *graph.WorkflowGraph, agentID string) ([]ToolIR, error) {
	var tools []ToolIR
	for _, e := range g.EdgesToWithSemantics(agentID, graph.SemanticTool) {
		src, ok := g.Nodes[e.Source]
		if !ok {
			continue
		}
		name, _ := src.Data["name"].(string)
		if name == "" {
			name = src.ID
		}
		errBehavior := ErrorBehaviorFailFast
		if eb, ok := src.Data["error_behavior"].(string); ok && eb != "" {
			errBehavior = ErrorBehavior(eb)
		}
		t := ToolIR{Name: name, ErrorBehavior: errBehavior}
		if desc, ok := src.Data["description"].(string); ok {
			t.Description = desc
		}
		if file, ok := src.Data["file"].(string); ok && file != "" {
			ref, ok := p.Tools[file]
			if !ok {
				return nil, &cerr.ToolLoadError{NodeID: src.ID, Path: file, Msg: "tool file was not loaded by project loader"}
			}
			t.FilePath = ref.AbsPath
		} else if code, ok := src.Data["code"].(string); ok && code != "" {
			t.Code = code
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func decodePlanner(d map[string]any) *PlannerConfig {
	raw, ok := d["planner"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	var pc PlannerConfig
	_ = mapstructure.Decode(raw, &pc)
	return &pc
}

func decodeCodeExecutor(d map[string]any) *CodeExecutorConfig {
	raw, ok := d["code_executor"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	var cc CodeExecutorConfig
	_ = mapstructure.Decode(raw, &cc)
	return &cc
}

func decodeHTTPOptions(d map[string]any) *HTTPOptionsConfig {
	raw, ok := d["http_options"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	var hc HTTPOptionsConfig
	_ = mapstructure.Decode(raw, &hc)
	return &hc
}

// decodeCallbacks accepts either a flat top-level list of sources or a
// nested {"sources": [...]}; flat takes precedence (spec 4.4 precedence
// rule: flat-over-nested).
func decodeCallbacks(d map[string]any) CallbackConfig {
	var cc CallbackConfig
	if flat, ok := d["callbacks"].([]any); ok {
		for _, item := range flat {
			if m, ok := item.(map[string]any); ok {
				var src CallbackSourceIR
				if err := mapstructure.Decode(m, &src); err == nil {
					cc.Sources = append(cc.Sources, src)
				}
			}
		}
		return cc
	}
	if nested, ok := d["callbacks"].(map[string]any); ok {
		if sources, ok := nested["sources"].([]any); ok {
			for _, item := range sources {
				if m, ok := item.(map[string]any); ok {
					var src CallbackSourceIR
					if err := mapstructure.Decode(m, &src); err == nil {
						cc.Sources = append(cc.Sources, src)
					}
				}
			}
		}
	}
	return cc
}

func decodeSchemaSource(v any) *SchemaSourceIR {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	var s SchemaSourceIR
	_ = mapstructure.Decode(m, &s)
	return &s
}

func transformCustomNode(g *graph.WorkflowGraph, id string, n *graph.GraphNode) *CustomNodeIR {
	cn := &CustomNodeIR{
		ID:                id,
		UnitID:            n.UnitID,
		SourceNodeID:      id,
		Config:            map[string]any{},
		InputConnections:  map[string][]ConnectionSource{},
		OutputConnections: map[string][]string{},
	}
	if name, ok := n.Data["name"].(string); ok {
		cn.Name = name
	}
	if cfg, ok := n.Data["config"].(map[string]any); ok {
		cn.Config = cfg
	}
	cn.OutputNode, _ = n.Data["output_node"].(bool)
	cn.AlwaysExecute, _ = n.Data["always_execute"].(bool)
	if lazy, ok := n.Data["lazy_inputs"].([]any); ok {
		for _, v := range lazy {
			if s, ok := v.(string); ok {
				cn.LazyInputs = append(cn.LazyInputs, s)
			}
		}
	}

	for _, e := range g.EdgesTo(id) {
		handle := e.TargetHandle
		if handle == "" {
			handle = "default"
		}
		cn.InputConnections[handle] = append(cn.InputConnections[handle], ConnectionSource{NodeID: e.Source, Handle: e.SourceHandle})
	}
	for _, e := range g.EdgesFrom(id) {
		handle := e.SourceHandle
		if handle == "" {
			handle = "default"
		}
		cn.OutputConnections[handle] = append(cn.OutputConnections[handle], e.Target)
	}
	return cn
}

func transformUserInput(g *graph.WorkflowGraph, id string, n *graph.GraphNode) UserInputIR {
	ui := UserInputIR{ID: id}
	if name, ok := n.Data["name"].(string); ok {
		ui.Name = name
	}
	if v, ok := n.Data["variable_name"].(string); ok {
		ui.VariableName = v
	}
	ui.IsTrigger, _ = n.Data["is_trigger"].(bool)
	if secs, ok := n.Data["timeout_seconds"].(float64); ok {
		ui.TimeoutSeconds = int(secs)
	}
	ui.TimeoutBehavior = TimeoutBehaviorError
	if tb, ok := n.Data["timeout_behavior"].(string); ok && tb != "" {
		ui.TimeoutBehavior = TimeoutBehavior(tb)
	}
	if text, ok := n.Data["predefined_text"].(string); ok {
		ui.PredefinedText = text
	}
	for _, e := range g.EdgesTo(id) {
		if src, ok := g.Nodes[e.Source]; ok && src.Type == "agent" {
			ui.IncomingAgentIDs = append(ui.IncomingAgentIDs, e.Source)
		}
	}
	for _, e := range g.EdgesFrom(id) {
		if tgt, ok := g.Nodes[e.Target]; ok && tgt.Type == "agent" {
			ui.OutgoingAgentIDs = append(ui.OutgoingAgentIDs, e.Target)
		}
	}
	return ui
}

// populateUpstreamOutputKeys sets each agent's UpstreamOutputKeys from the
// output_key of every immediate sequential predecessor.
func populateUpstreamOutputKeys(g *graph.WorkflowGraph, w *WorkflowIR) {
	for id, a := range w.AllAgents {
		for _, e := range g.EdgesToWithSemantics(id, graph.SemanticSequential) {
			if up, ok := w.AllAgents[e.Source]; ok && up.OutputKey != "" {
				a.UpstreamOutputKeys = append(a.UpstreamOutputKeys, up.OutputKey)
			}
		}
	}
}

// buildRootAgent walks the sequential chain from the graph's entry node,
// grouping fork/join diamonds (an agent with N parallel sequential
// successors that reconverge on a single later agent) into a synthetic
// parallel sub-agent wrapped back into the sequential chain. The grouping
// rule is an explicit open-question decision (SPEC_FULL.md section 13):
// a set of successors forms a diamond when they share no agent among
// themselves and all of their immediate successors converge on the same
// single node.
func buildRootAgent(g *graph.WorkflowGraph, w *WorkflowIR) (string, error) {
	if g.EntryNodeID == "" {
		if len(w.AllAgents) == 1 {
			for id := range w.AllAgents {
				return id, nil
			}
		}
		return "", cerr.NewCompilationError(cerr.StageTransformer, "could not determine an entry agent", nil)
	}
	if _, ok := w.AllAgents[g.EntryNodeID]; !ok {
		return "", cerr.NewCompilationError(cerr.StageTransformer, fmt.Sprintf("entry node %s is not an agent", g.EntryNodeID), nil)
	}

	chain, synthCounter := []string{}, 0
	visited := map[string]bool{}
	cur := g.EntryNodeID
	for cur != "" && !visited[cur] {
		visited[cur] = true
		agent := w.AllAgents[cur]
		if agent == nil {
			break
		}
		succ := agent.SubAgents
		if len(succ) <= 1 {
			chain = append(chain, cur)
			if len(succ) == 1 {
				cur = succ[0]
				continue
			}
			break
		}

		joinID, ok := detectDiamondJoin(w, succ)
		if !ok {
			// Not a clean diamond: keep walking the first branch only,
			// leaving the rest reachable via their own SubAgents wiring.
			chain = append(chain, cur)
			cur = succ[0]
			continue
		}

		synthCounter++
		parID := fmt.Sprintf("__parallel_%d", synthCounter)
		w.AllAgents[parID] = &AgentIR{
			ID:        parID,
			Name:      parID,
			Type:      AgentTypeParallel,
			SubAgents: succ,
		}
		chain = append(chain, cur, parID)
		cur = joinID
	}

	if len(chain) <= 1 {
		return g.EntryNodeID, nil
	}

	rootID := "__root_sequential"
	w.AllAgents[rootID] = &AgentIR{
		ID:        rootID,
		Name:      rootID,
		Type:      AgentTypeSequential,
		SubAgents: chain,
	}
	return rootID, nil
}

// detectDiamondJoin reports whether every branch in succ independently
// converges on exactly one common downstream agent, and returns that
// agent's id.
func detectDiamondJoin(w *WorkflowIR, succ []string) (string, bool) {
	var join string
	for _, s := range succ {
		agent := w.AllAgents[s]
		if agent == nil || len(agent.SubAgents) != 1 {
			return "", false
		}
		if join == "" {
			join = agent.SubAgents[0]
		} else if join != agent.SubAgents[0] {
			return "", false
		}
	}
	return join, join != ""
}
