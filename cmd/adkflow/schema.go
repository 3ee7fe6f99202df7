package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/kadirpekel/adkflow/internal/compiler/project"
)

// SchemaCmd generates JSON Schema for the on-disk project manifest format,
// for consumption by external tooling (editors, validators) independent of
// the per-FlowUnit schema the extension registry serves to the visual
// editor at runtime (spec 6.3).
type SchemaCmd struct {
	Compact bool `short:"c" help:"Compact JSON output (no indentation)."`
}

func (c *SchemaCmd) Run(cli *CLI) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&project.Manifest{})
	schema.ID = "https://adkflow.dev/schemas/manifest.json"
	schema.Title = "adkflow Project Manifest Schema"
	schema.Description = "Schema for the visual-editor project manifest.json consumed by the adkflow compiler."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	encoder := json.NewEncoder(os.Stdout)
	if !c.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(schema); err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	return nil
}
