package extension

import (
	"fmt"
	"log/slog"
	"os"
	"plugin"
	"sync"

	"github.com/kadirpekel/adkflow/pkg/flowunit"
	"github.com/kadirpekel/adkflow/pkg/registry"
)

// loadedUnit pairs a loaded FlowUnit with the scope/package it came from.
type loadedUnit struct {
	Unit     flowunit.Unit
	Scope    Scope
	Package  string
	Manifest UnitEntry
	ModTime  int64
}

// Registry is the dual-scope FlowUnit lookup: Global and Project packages
// each live in their own BaseRegistry[loadedUnit], and Get applies
// project-shadows-global precedence.
type Registry struct {
	mu sync.RWMutex

	globalRoot  string
	projectRoot string

	global  *registry.BaseRegistry[loadedUnit]
	project *registry.BaseRegistry[loadedUnit]
	builtin *registry.BaseRegistry[loadedUnit]

	dirMTimes map[string]int64
}

// New creates an empty registry rooted at the given global and project
// extension directories. Call ReloadAll to populate it.
func New(globalRoot, projectRoot string) *Registry {
	return &Registry{
		globalRoot:  globalRoot,
		projectRoot: projectRoot,
		global:      registry.NewBaseRegistry[loadedUnit](),
		project:     registry.NewBaseRegistry[loadedUnit](),
		builtin:     registry.NewBaseRegistry[loadedUnit](),
		dirMTimes:   map[string]int64{},
	}
}

// ScopeBuiltin identifies a FlowUnit compiled directly into the adkflow
// binary (pkg/flowunit/builtin), rather than discovered as a plugin package.
const ScopeBuiltin Scope = "builtin"

// RegisterBuiltin registers a FlowUnit compiled into the binary. Unlike
// Global/Project scopes, builtin registrations are never cleared by
// ReloadGlobal/ReloadProject -- they don't come from a watched directory,
// so there is nothing to re-discover.
func (r *Registry) RegisterBuiltin(entry UnitEntry, unit flowunit.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builtin.Register(entry.UnitID, loadedUnit{Unit: unit, Scope: ScopeBuiltin, Package: "builtin", Manifest: entry})
}

// GetUnit returns the live unit for unitID. Project shadows Global shadows
// Builtin, so a deployment can override a built-in unit id with its own
// package without recompiling adkflow.
func (r *Registry) GetUnit(unitID string) (flowunit.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if lu, ok := r.project.Get(unitID); ok {
		return lu.Unit, true
	}
	if lu, ok := r.global.Get(unitID); ok {
		return lu.Unit, true
	}
	if lu, ok := r.builtin.Get(unitID); ok {
		return lu.Unit, true
	}
	return nil, false
}

// GetScope reports which scope currently serves unitID.
func (r *Registry) GetScope(unitID string) (Scope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.project.Get(unitID); ok {
		return ScopeProject, true
	}
	if _, ok := r.global.Get(unitID); ok {
		return ScopeGlobal, true
	}
	if _, ok := r.builtin.Get(unitID); ok {
		return ScopeBuiltin, true
	}
	return "", false
}

// ReloadGlobal re-discovers and reloads every package under globalRoot.
func (r *Registry) ReloadGlobal() error { return r.reloadScope(ScopeGlobal) }

// ReloadProject re-discovers and reloads every package under projectRoot.
func (r *Registry) ReloadProject() error { return r.reloadScope(ScopeProject) }

// ReloadAll reloads both scopes.
func (r *Registry) ReloadAll() error {
	if err := r.ReloadGlobal(); err != nil {
		return err
	}
	return r.ReloadProject()
}

func (r *Registry) reloadScope(scope Scope) error {
	root := r.globalRoot
	reg := r.global
	if scope == ScopeProject {
		root = r.projectRoot
		reg = r.project
	}
	if root == "" {
		return nil
	}

	pkgs, err := Discover(root, scope, true)
	if err != nil {
		return fmt.Errorf("discover %s extensions: %w", scope, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	reg.Clear()

	for _, pkg := range pkgs {
		plug, err := plugin.Open(pkg.SOPath)
		if err != nil {
			slog.Warn("extension: failed to load package", "name", pkg.Name, "path", pkg.SOPath, "err", err)
			continue
		}
		for _, entry := range pkg.Manifest.Units {
			sym, err := plug.Lookup(entry.Symbol)
			if err != nil {
				slog.Warn("extension: symbol not found", "package", pkg.Name, "symbol", entry.Symbol, "err", err)
				continue
			}
			unit, ok := sym.(flowunit.Unit)
			if !ok {
				if factory, ok := sym.(func() flowunit.Unit); ok {
					unit = factory()
				} else {
					slog.Warn("extension: symbol does not satisfy flowunit.Unit", "package", pkg.Name, "symbol", entry.Symbol)
					continue
				}
			}
			info, _ := os.Stat(pkg.SOPath)
			var mtime int64
			if info != nil {
				mtime = info.ModTime().UnixNano()
			}
			if err := reg.Register(entry.UnitID, loadedUnit{Unit: unit, Scope: scope, Package: pkg.Name, Manifest: entry, ModTime: mtime}); err != nil {
				slog.Warn("extension: duplicate unit id within scope", "unit_id", entry.UnitID, "err", err)
			}
		}
		r.dirMTimes[pkg.DirPath] = dirModTime(pkg.DirPath)
	}
	return nil
}

func dirModTime(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var max int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if t := info.ModTime().UnixNano(); t > max {
			max = t
		}
	}
	return max
}

// Changed reports whether any watched directory's mtime moved since the
// last reload, used by the poll loop to decide whether to reload.
func (r *Registry) Changed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for dir, last := range r.dirMTimes {
		if dirModTime(dir) != last {
			return true
		}
	}
	return false
}

// GetAllSchemas generates the per-unit schema document the visual editor's
// palette consumes (spec 6.3): ports, widget metadata, and the jsonschema
// reflection of each registered unit's Descriptor when available -- the
// same reflect-then-marshal-to-map pattern the teacher's function-tool
// schema generator uses (pkg/tool/functiontool/schema.go), since a
// dynamically-shaped Descriptor can't be reflected from a static Go type.
func (r *Registry) GetAllSchemas() map[string]map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[string]map[string]any{}
	for _, lu := range r.builtin.List() {
		out[lu.Manifest.UnitID] = schemaFor(lu)
	}
	for _, lu := range r.global.List() {
		out[lu.Manifest.UnitID] = schemaFor(lu) // global shadows builtin
	}
	for _, lu := range r.project.List() {
		out[lu.Manifest.UnitID] = schemaFor(lu) // project shadows global
	}
	return out
}

func schemaFor(lu loadedUnit) map[string]any {
	properties := map[string]any{}
	var required []string

	if d, ok := lu.Unit.(flowunit.Describable); ok {
		desc := d.Descriptor()
		for _, in := range desc.Inputs {
			properties[in.Name] = map[string]any{
				"type":        jsonSchemaType(in.Kind),
				"description": in.Description,
			}
			if in.Required {
				required = append(required, in.Name)
			}
		}
	}

	s := map[string]any{
		"type":         "object",
		"title":        lu.Manifest.UILabel,
		"properties":   properties,
		"menuLocation": lu.Manifest.MenuLocation,
		"icon":         lu.Manifest.Icon,
		"scope":        lu.Scope,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func jsonSchemaType(k flowunit.PortKind) string {
	switch k {
	case flowunit.PortKindString:
		return "string"
	case flowunit.PortKindNumber:
		return "number"
	case flowunit.PortKindBool:
		return "boolean"
	default:
		return ""
	}
}

// GetMenuTree groups every loaded unit's UI metadata by its declared
// menu_location, for the visual editor's node palette.
func (r *Registry) GetMenuTree() map[string][]UnitEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tree := map[string][]UnitEntry{}
	add := func(lu loadedUnit) {
		tree[lu.Manifest.MenuLocation] = append(tree[lu.Manifest.MenuLocation], lu.Manifest)
	}
	for _, lu := range r.builtin.List() {
		add(lu)
	}
	for _, lu := range r.global.List() {
		add(lu)
	}
	for _, lu := range r.project.List() {
		add(lu)
	}
	return tree
}
