// Package validate checks a compiled WorkflowIR for the structural
// invariants in spec section 8: acyclicity, unique names, required fields,
// and sane tunables. Fatal issues abort compilation; the rest are warnings
// surfaced to the caller.
package validate

import (
	"fmt"

	"github.com/kadirpekel/adkflow/internal/compiler/cerr"
	"github.com/kadirpekel/adkflow/internal/compiler/ir"
)

// Result is the validator's full report: Fatal aggregates blocking issues
// (non-nil iff compilation must stop), Warnings never blocks.
type Result struct {
	Warnings []cerr.ValidationIssue
}

// Validate runs every structural check against w, returning a non-nil error
// (always a *cerr.ValidationError) when any fatal issue is found.
func Validate(w *ir.WorkflowIR) (*Result, error) {
	var issues []cerr.ValidationIssue
	res := &Result{}

	issues = append(issues, checkStartNode(w)...)
	issues = append(issues, checkUniqueNames(w)...)
	issues = append(issues, checkDescriptions(w)...)
	issues = append(issues, checkInstructions(w)...)
	issues = append(issues, checkLoopIterations(w)...)
	issues = append(issues, checkTemperature(w)...)
	issues = append(issues, checkAcyclic(w)...)

	var fatal []cerr.ValidationIssue
	for _, iss := range issues {
		if iss.Fatal {
			fatal = append(fatal, iss)
		} else {
			res.Warnings = append(res.Warnings, iss)
		}
	}
	if len(fatal) > 0 {
		return res, &cerr.ValidationError{Issues: fatal}
	}
	return res, nil
}

func checkStartNode(w *ir.WorkflowIR) []cerr.ValidationIssue {
	if !w.HasStartNode {
		return []cerr.ValidationIssue{{Fatal: false, Message: "workflow has no start node; entry agent was inferred"}}
	}
	return nil
}

func checkUniqueNames(w *ir.WorkflowIR) []cerr.ValidationIssue {
	seen := map[string]string{}
	var issues []cerr.ValidationIssue
	for id, a := range w.AllAgents {
		if prior, ok := seen[a.Name]; ok {
			issues = append(issues, cerr.ValidationIssue{
				Fatal:   true,
				Message: fmt.Sprintf("duplicate agent name %q (nodes %s and %s)", a.Name, prior, id),
				NodeID:  id,
			})
			continue
		}
		seen[a.Name] = id
	}
	return issues
}

func checkDescriptions(w *ir.WorkflowIR) []cerr.ValidationIssue {
	var issues []cerr.ValidationIssue
	for id, a := range w.AllAgents {
		if a.Description == "" {
			issues = append(issues, cerr.ValidationIssue{Fatal: true, Message: fmt.Sprintf("agent %q has no description", a.Name), NodeID: id})
		}
	}
	return issues
}

func checkInstructions(w *ir.WorkflowIR) []cerr.ValidationIssue {
	var issues []cerr.ValidationIssue
	for id, a := range w.AllAgents {
		if a.Type == ir.AgentTypeLLM && a.Instruction == "" {
			issues = append(issues, cerr.ValidationIssue{
				Fatal:   false,
				Message: fmt.Sprintf("LLM agent %q has neither an instruction nor a context edge", a.Name),
				NodeID:  id,
			})
		}
	}
	return issues
}

func checkLoopIterations(w *ir.WorkflowIR) []cerr.ValidationIssue {
	var issues []cerr.ValidationIssue
	for id, a := range w.AllAgents {
		if a.Type == ir.AgentTypeLoop && a.MaxIterations < 1 {
			issues = append(issues, cerr.ValidationIssue{
				Fatal:   true,
				Message: fmt.Sprintf("loop agent %q must set max_iterations >= 1", a.Name),
				NodeID:  id,
			})
		}
	}
	return issues
}

func checkTemperature(w *ir.WorkflowIR) []cerr.ValidationIssue {
	var issues []cerr.ValidationIssue
	for id, a := range w.AllAgents {
		if a.Type != ir.AgentTypeLLM {
			continue
		}
		if a.Temperature < 0 || a.Temperature > 2 {
			issues = append(issues, cerr.ValidationIssue{
				Fatal:   false,
				Message: fmt.Sprintf("agent %q temperature %.2f is outside [0, 2]", a.Name, a.Temperature),
				NodeID:  id,
			})
		}
	}
	return issues
}

// checkAcyclic walks the SubAgents wiring (sequential + parallel edges only)
// and reports a fatal issue if it finds a cycle.
func checkAcyclic(w *ir.WorkflowIR) []cerr.ValidationIssue {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var cyclic string

	var visit func(id string) bool
	visit = func(id string) bool {
		if color[id] == black {
			return true
		}
		if color[id] == gray {
			cyclic = id
			return false
		}
		color[id] = gray
		agent := w.AllAgents[id]
		if agent != nil {
			for _, sub := range agent.SubAgents {
				if _, ok := w.AllAgents[sub]; ok {
					if !visit(sub) {
						return false
					}
				}
			}
		}
		color[id] = black
		return true
	}

	for id := range w.AllAgents {
		if color[id] == white {
			if !visit(id) {
				return []cerr.ValidationIssue{{
					Fatal:   true,
					Message: fmt.Sprintf("agent graph contains a cycle reachable from %q", cyclic),
					NodeID:  cyclic,
				}}
			}
		}
	}
	return nil
}
