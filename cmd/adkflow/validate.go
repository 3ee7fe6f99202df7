package main

import (
	"fmt"
	"os"

	"github.com/kadirpekel/adkflow/internal/compiler/flow"
	"github.com/kadirpekel/adkflow/internal/compiler/graph"
	"github.com/kadirpekel/adkflow/internal/compiler/ir"
	"github.com/kadirpekel/adkflow/internal/compiler/project"
	"github.com/kadirpekel/adkflow/internal/compiler/substitute"
	"github.com/kadirpekel/adkflow/internal/compiler/validate"
)

// ValidateCmd runs the compiler pipeline against a project and reports
// validation issues without executing any agent.
type ValidateCmd struct {
	Project string `arg:"" help:"Path to the project directory." type:"path"`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	proj, err := project.Load(c.Project, project.DefaultOptions())
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	pp := flow.Parse(proj)

	g, err := graph.Build(pp)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	w, err := ir.Transform(g, proj)
	if err != nil {
		return fmt.Errorf("transforming IR: %w", err)
	}

	substitute.ApplyToIR(w, w.GlobalVariables)

	result, verr := validate.Validate(w)
	if verr != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", verr)
		return verr
	}
	for _, issue := range result.Warnings {
		fmt.Printf("[warning] %s: %s\n", issue.NodeID, issue.Message)
	}
	fmt.Printf("%s: %d agent(s), %d custom node(s), ok\n", c.Project, len(w.AllAgents), len(w.CustomNodes))
	return nil
}
