package extension

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writePackage(t *testing.T, root, name string, withSO bool) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	m := Manifest{Name: name, Version: "1.0.0", Units: []UnitEntry{{UnitID: name + "_unit", Symbol: "Unit"}}}
	data, err := yaml.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.yaml"), data, 0o644))
	if withSO {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".so"), []byte("fake"), 0o644))
	}
}

func TestDiscoverMissingRootReturnsEmpty(t *testing.T) {
	found, err := Discover(filepath.Join(t.TempDir(), "missing"), ScopeGlobal, false)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscoverFindsValidPackage(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "pkg1", true)

	found, err := Discover(root, ScopeGlobal, false)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "pkg1", found[0].Name)
	assert.Equal(t, ScopeGlobal, found[0].Scope)
}

func TestDiscoverRejectsMissingSO(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "pkg1", false)

	_, err := Discover(root, ScopeGlobal, false)
	require.Error(t, err)
}

func TestDiscoverSkipsDirsWithoutManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-package"), 0o755))

	found, err := Discover(root, ScopeGlobal, false)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscoverScansSubdirectories(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "group"), "pkg1", true)

	noSub, err := Discover(root, ScopeProject, false)
	require.NoError(t, err)
	assert.Empty(t, noSub)

	withSub, err := Discover(root, ScopeProject, true)
	require.NoError(t, err)
	require.Len(t, withSub, 1)
}

func TestDefaultGlobalPathEndsInExtensionsDir(t *testing.T) {
	assert.Contains(t, DefaultGlobalPath(), filepath.Join(".adkflow", "adkflow_extensions"))
}

func TestProjectPathJoinsRoot(t *testing.T) {
	assert.Equal(t, filepath.Join("/proj", "adkflow_extensions"), ProjectPath("/proj"))
}
