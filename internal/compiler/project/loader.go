package project

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kadirpekel/adkflow/internal/compiler/cerr"
)

// Options controls what the loader reads eagerly.
type Options struct {
	LoadPrompts   bool
	LoadTools     bool
	LoadCallbacks bool
	LoadSchemas   bool
}

// DefaultOptions eagerly loads every referenced file kind.
func DefaultOptions() Options {
	return Options{LoadPrompts: true, LoadTools: true, LoadCallbacks: true, LoadSchemas: true}
}

// Load reads manifest.json under path, partitions nodes/edges by tab,
// resolves every referenced prompt/tool/callback/schema file with sandbox
// enforcement, and returns a fully loaded Project.
func Load(path string, opts Options) (*Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, cerr.NewCompilationError(cerr.StageLoader, "project path does not exist", err)
	}
	if !info.IsDir() {
		return nil, cerr.NewCompilationError(cerr.StageLoader, "project path is not a directory", nil)
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return nil, cerr.NewCompilationError(cerr.StageLoader, "failed to resolve project root", err)
	}

	manifestPath := filepath.Join(root, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, cerr.NewCompilationError(cerr.StageLoader, "manifest.json is required", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, cerr.NewCompilationError(cerr.StageLoader, "invalid manifest.json", err)
	}

	if len(manifest.Tabs) == 0 {
		return nil, cerr.NewCompilationError(cerr.StageLoader, "project must declare at least one tab", nil)
	}

	p := &Project{
		Path:    root,
		Name:    manifest.Name,
		Version: manifest.Version,
		Tabs:    manifest.Tabs,
		Nodes:   manifest.Nodes,
		Edges:   manifest.Edges,
		Logging: manifest.Logging,

		Prompts:   map[string]FileRef{},
		Tools:     map[string]FileRef{},
		Callbacks: map[string]FileRef{},
		Schemas:   map[string]FileRef{},
	}

	// Edges are only kept within a tab when both endpoints live in it; compute
	// node->tab membership up front so the parser doesn't need to.
	nodeTab := make(map[string]string, len(manifest.Nodes))
	for _, n := range manifest.Nodes {
		nodeTab[n.ID] = n.TabID
	}
	kept := manifest.Edges[:0:0]
	for _, e := range manifest.Edges {
		if nodeTab[e.Source] != "" && nodeTab[e.Source] == nodeTab[e.Target] {
			kept = append(kept, e)
		}
	}
	p.Edges = kept

	for _, node := range manifest.Nodes {
		if err := loadReferencedFiles(p, node, opts); err != nil {
			return nil, err
		}
	}

	slog.Debug("project loaded", "path", root, "tabs", len(p.Tabs), "nodes", len(p.Nodes), "edges", len(p.Edges))
	return p, nil
}

// referencedFileKeys enumerates the node-data keys that, per node type,
// contain a project-relative path to a referenced file.
var referencedFileKeys = map[string]struct {
	key    string
	bucket func(*Project) map[string]FileRef
	isCode bool
}{
	"prompt":    {"file", func(p *Project) map[string]FileRef { return p.Prompts }, false},
	"context":   {"file", func(p *Project) map[string]FileRef { return p.Prompts }, false},
	"tool":      {"file", func(p *Project) map[string]FileRef { return p.Tools }, true},
	"agentTool": {"file", func(p *Project) map[string]FileRef { return p.Tools }, true},
	"callback":  {"file", func(p *Project) map[string]FileRef { return p.Callbacks }, true},
	"schema":    {"file", func(p *Project) map[string]FileRef { return p.Schemas }, false},
}

func loadReferencedFiles(p *Project, node RawNode, opts Options) error {
	spec, ok := referencedFileKeys[node.Type]
	if !ok {
		return nil
	}
	switch node.Type {
	case "tool", "agentTool":
		if !opts.LoadTools {
			return nil
		}
	case "callback":
		if !opts.LoadCallbacks {
			return nil
		}
	case "schema":
		if !opts.LoadSchemas {
			return nil
		}
	default:
		if !opts.LoadPrompts {
			return nil
		}
	}

	rel, _ := node.Data[spec.key].(string)
	if rel == "" {
		return nil
	}

	abs, err := resolveSandboxed(p.Path, rel)
	if err != nil {
		return cerr.NewCompilationError(cerr.StageLoader,
			fmt.Sprintf("referenced path %q at node %s escapes project", rel, node.ID), err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return cerr.NewCompilationError(cerr.StageLoader,
			fmt.Sprintf("referenced file %q at node %s not found", rel, node.ID), err)
	}

	bucket := spec.bucket(p)
	bucket[rel] = FileRef{RelPath: rel, AbsPath: abs, Content: string(content), IsCode: spec.isCode}
	return nil
}

// resolveSandboxed resolves rel against root and rejects any result that
// escapes root (spec invariant 2: sandbox).
func resolveSandboxed(root, rel string) (string, error) {
	abs := filepath.Join(root, rel)
	absClean, err := filepath.Abs(abs)
	if err != nil {
		return "", err
	}
	rootClean, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if absClean != rootClean && !strings.HasPrefix(absClean, rootClean+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes project root %q", rel, root)
	}
	return absClean, nil
}
