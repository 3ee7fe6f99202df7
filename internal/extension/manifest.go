// Package extension implements the dual-scope FlowUnit registry: global
// (~/.adkflow/adkflow_extensions) and project (<project>/adkflow_extensions)
// packages, discovered from per-package manifests, loaded in isolation via
// Go's stdlib plugin package, and kept fresh by an mtime-poll reload loop
// with fsnotify as a fast-path signal (spec section 4.7).
package extension

// Scope identifies which directory a FlowUnit package was discovered in.
// Project always shadows Global for a colliding unit id.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
)

// Manifest mirrors the teacher's .plugin.yaml shape (pkg/plugins.PluginManifest),
// generalized from "plugin" to "package" and from gRPC-executable to a
// stdlib Go plugin (.so) path.
type Manifest struct {
	Name    string      `yaml:"name"`
	Version string      `yaml:"version"`
	Units   []UnitEntry `yaml:"units"`
}

// UnitEntry names one FlowUnit symbol exported by the package's .so, plus
// static metadata used before the plugin is ever loaded (menu placement,
// icon) so the editor can render a palette without loading code.
type UnitEntry struct {
	UnitID       string `yaml:"unit_id"`
	Symbol       string `yaml:"symbol"` // exported plugin.Lookup symbol name
	UILabel      string `yaml:"ui_label"`
	MenuLocation string `yaml:"menu_location"`
	Icon         string `yaml:"icon"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return errMissingField("name")
	}
	if m.Version == "" {
		return errMissingField("version")
	}
	if len(m.Units) == 0 {
		return errMissingField("units")
	}
	for _, u := range m.Units {
		if u.UnitID == "" || u.Symbol == "" {
			return errMissingField("units[].unit_id/symbol")
		}
	}
	return nil
}

type manifestFieldError struct{ field string }

func (e *manifestFieldError) Error() string { return "manifest missing '" + e.field + "' field" }

func errMissingField(field string) error { return &manifestFieldError{field: field} }
