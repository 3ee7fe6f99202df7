package builtin

import (
	"context"
	"fmt"

	"github.com/kadirpekel/adkflow/internal/contextagg"
	"github.com/kadirpekel/adkflow/pkg/flowunit"
)

// tokenCounterUnit reports the cl100k_base token count of inputs["text"],
// useful for a workflow branching on context-budget thresholds before
// handing a large aggregated blob to an agent.
type tokenCounterUnit struct{}

// NewTokenCounter wraps contextagg's tiktoken-go-backed counter as a
// standalone node.
func NewTokenCounter() flowunit.Unit { return tokenCounterUnit{} }

func (tokenCounterUnit) UnitID() string { return "token_counter" }

func (tokenCounterUnit) Run(ctx context.Context, inputs map[string]any, config map[string]any) (map[string]any, error) {
	text, _ := inputs["text"].(string)
	if text == "" {
		return nil, fmt.Errorf("token_counter: no text provided")
	}
	return map[string]any{"count": contextagg.TokenCount(text)}, nil
}

func (tokenCounterUnit) Descriptor() flowunit.Descriptor {
	return flowunit.Descriptor{
		Description: "Counts cl100k_base tokens in the input text.",
		Inputs: []flowunit.Port{
			{Name: "text", Kind: flowunit.PortKindString, Required: true},
		},
		Outputs: []flowunit.Port{
			{Name: "count", Kind: flowunit.PortKindNumber},
		},
	}
}

var (
	_ flowunit.Unit        = tokenCounterUnit{}
	_ flowunit.Describable = tokenCounterUnit{}
)
