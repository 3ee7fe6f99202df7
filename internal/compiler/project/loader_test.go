package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir string, m Manifest) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644))
}

func baseManifest() Manifest {
	return Manifest{
		Name:    "demo",
		Version: "1.0",
		Tabs:    []Tab{{ID: "t1", Name: "main", Order: 0}},
		Nodes: []RawNode{
			{ID: "n1", Type: "agent", TabID: "t1", Data: map[string]any{}},
		},
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"), DefaultOptions())
	require.Error(t, err)
}

func TestLoadRequiresManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, DefaultOptions())
	require.Error(t, err)
}

func TestLoadRequiresAtLeastOneTab(t *testing.T) {
	dir := t.TempDir()
	m := baseManifest()
	m.Tabs = nil
	writeManifest(t, dir, m)

	_, err := Load(dir, DefaultOptions())
	require.Error(t, err)
}

func TestLoadDropsCrossTabEdges(t *testing.T) {
	dir := t.TempDir()
	m := baseManifest()
	m.Tabs = append(m.Tabs, Tab{ID: "t2", Name: "other", Order: 1})
	m.Nodes = append(m.Nodes, RawNode{ID: "n2", Type: "agent", TabID: "t2"})
	m.Edges = []RawEdge{
		{ID: "e1", Source: "n1", Target: "n2"}, // crosses tabs, must be dropped
	}
	writeManifest(t, dir, m)

	p, err := Load(dir, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, p.Edges)
}

func TestLoadKeepsSameTabEdges(t *testing.T) {
	dir := t.TempDir()
	m := baseManifest()
	m.Nodes = append(m.Nodes, RawNode{ID: "n2", Type: "agent", TabID: "t1"})
	m.Edges = []RawEdge{{ID: "e1", Source: "n1", Target: "n2"}}
	writeManifest(t, dir, m)

	p, err := Load(dir, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, p.Edges, 1)
	assert.Equal(t, "e1", p.Edges[0].ID)
}

func TestLoadReferencedPromptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt.md"), []byte("hello"), 0o644))
	m := baseManifest()
	m.Nodes[0].Type = "prompt"
	m.Nodes[0].Data = map[string]any{"file": "prompt.md"}
	writeManifest(t, dir, m)

	p, err := Load(dir, DefaultOptions())
	require.NoError(t, err)
	ref, ok := p.Prompts["prompt.md"]
	require.True(t, ok)
	assert.Equal(t, "hello", ref.Content)
	assert.False(t, ref.IsCode)
}

func TestLoadReferencedToolFileMarkedCode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool.py"), []byte("print(1)"), 0o644))
	m := baseManifest()
	m.Nodes[0].Type = "tool"
	m.Nodes[0].Data = map[string]any{"file": "tool.py"}
	writeManifest(t, dir, m)

	p, err := Load(dir, DefaultOptions())
	require.NoError(t, err)
	ref, ok := p.Tools["tool.py"]
	require.True(t, ok)
	assert.True(t, ref.IsCode)
}

func TestLoadSandboxEscapeRejected(t *testing.T) {
	dir := t.TempDir()
	m := baseManifest()
	m.Nodes[0].Type = "prompt"
	m.Nodes[0].Data = map[string]any{"file": "../../etc/passwd"}
	writeManifest(t, dir, m)

	_, err := Load(dir, DefaultOptions())
	require.Error(t, err)
}

func TestLoadMissingReferencedFile(t *testing.T) {
	dir := t.TempDir()
	m := baseManifest()
	m.Nodes[0].Type = "prompt"
	m.Nodes[0].Data = map[string]any{"file": "missing.md"}
	writeManifest(t, dir, m)

	_, err := Load(dir, DefaultOptions())
	require.Error(t, err)
}

func TestLoadOptionsSkipUnrequestedKinds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool.py"), []byte("x"), 0o644))
	m := baseManifest()
	m.Nodes[0].Type = "tool"
	m.Nodes[0].Data = map[string]any{"file": "tool.py"}
	writeManifest(t, dir, m)

	opts := Options{LoadPrompts: true} // LoadTools left false
	p, err := Load(dir, opts)
	require.NoError(t, err)
	assert.Empty(t, p.Tools)
}

func TestResolveSandboxedRejectsEscape(t *testing.T) {
	root := t.TempDir()
	_, err := resolveSandboxed(root, "../outside")
	require.Error(t, err)
}

func TestResolveSandboxedAllowsNested(t *testing.T) {
	root := t.TempDir()
	abs, err := resolveSandboxed(root, filepath.Join("sub", "file.txt"))
	require.NoError(t, err)
	assert.Contains(t, abs, root)
}
