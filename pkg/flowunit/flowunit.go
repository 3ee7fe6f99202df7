// Package flowunit defines the interface a custom-node package exports for
// the extension registry to load, mirroring the teacher's
// component.Component contract but scoped to a single pure function: given
// resolved inputs and config, produce outputs.
package flowunit

import "context"

// Unit is the symbol a package's compiled plugin must expose (via the
// UnitEntry.Symbol name in its manifest), satisfying this interface.
type Unit interface {
	// UnitID is the stable identifier referenced by graph nodes as
	// "custom:<unit_id>".
	UnitID() string

	// Run executes the unit against resolved port inputs and node config,
	// returning a map of output-port-name -> value.
	Run(ctx context.Context, inputs map[string]any, config map[string]any) (map[string]any, error)
}

// ConfigValidator is implemented by units that want to reject malformed
// config before a run starts, rather than failing mid-execution.
type ConfigValidator interface {
	ValidateConfig(config map[string]any) error
}

// ChangeDetector is implemented by units that want custom cache-invalidation
// semantics beyond the default input/config hash (spec 4.10's IS_CHANGED).
type ChangeDetector interface {
	IsChanged(inputs map[string]any, config map[string]any) any
}

// Lifecycle hooks a unit may optionally implement around its own execution.
type BeforeExecuteHook interface {
	OnBeforeExecute(ctx context.Context, inputs map[string]any, config map[string]any) error
}

type AfterExecuteHook interface {
	OnAfterExecute(ctx context.Context, outputs map[string]any) error
}

// PortKind distinguishes value shape for schema generation.
type PortKind string

const (
	PortKindString PortKind = "string"
	PortKindNumber PortKind = "number"
	PortKindBool   PortKind = "boolean"
	PortKindAny    PortKind = "any"
)

// Port describes one input or output connection point for schema generation
// and the visual editor's palette (spec 6.3).
type Port struct {
	Name        string   `json:"name"`
	Kind        PortKind `json:"kind"`
	Required    bool     `json:"required"`
	Description string   `json:"description,omitempty"`
}

// Descriptor is static metadata a unit may optionally expose (via a
// `Descriptor() Descriptor` method) to enrich generated schema beyond the
// manifest's UI fields.
type Descriptor struct {
	Inputs      []Port
	Outputs     []Port
	OutputNode  bool
	Description string
}

type Describable interface {
	Descriptor() Descriptor
}
