package extension

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/pkg/flowunit"
)

type stubUnit struct{ id string }

func (u stubUnit) UnitID() string { return u.id }
func (u stubUnit) Run(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	return nil, nil
}

func TestRegisterBuiltinAndGetUnit(t *testing.T) {
	reg := New("", "")
	require.NoError(t, reg.RegisterBuiltin(UnitEntry{UnitID: "echo"}, stubUnit{id: "echo"}))

	u, ok := reg.GetUnit("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", u.UnitID())

	scope, ok := reg.GetScope("echo")
	require.True(t, ok)
	assert.Equal(t, ScopeBuiltin, scope)
}

func TestGetUnitMissingReturnsFalse(t *testing.T) {
	reg := New("", "")
	_, ok := reg.GetUnit("nope")
	assert.False(t, ok)
}

func TestProjectShadowsGlobalShadowsBuiltin(t *testing.T) {
	reg := New("", "")
	require.NoError(t, reg.RegisterBuiltin(UnitEntry{UnitID: "shared"}, stubUnit{id: "builtin-impl"}))
	require.NoError(t, reg.global.Register("shared", loadedUnit{Unit: stubUnit{id: "global-impl"}, Scope: ScopeGlobal}))

	u, ok := reg.GetUnit("shared")
	require.True(t, ok)
	assert.Equal(t, "global-impl", u.UnitID())
	scope, _ := reg.GetScope("shared")
	assert.Equal(t, ScopeGlobal, scope)

	require.NoError(t, reg.project.Register("shared", loadedUnit{Unit: stubUnit{id: "project-impl"}, Scope: ScopeProject}))
	u, ok = reg.GetUnit("shared")
	require.True(t, ok)
	assert.Equal(t, "project-impl", u.UnitID())
	scope, _ = reg.GetScope("shared")
	assert.Equal(t, ScopeProject, scope)
}

func TestGetAllSchemasIncludesMenuMetadata(t *testing.T) {
	reg := New("", "")
	require.NoError(t, reg.RegisterBuiltin(UnitEntry{UnitID: "echo", UILabel: "Echo", MenuLocation: "utility"}, stubUnit{id: "echo"}))

	schemas := reg.GetAllSchemas()
	require.Contains(t, schemas, "echo")
	assert.Equal(t, "Echo", schemas["echo"]["title"])
	assert.Equal(t, "utility", schemas["echo"]["menuLocation"])
}

func TestGetMenuTreeGroupsByLocation(t *testing.T) {
	reg := New("", "")
	require.NoError(t, reg.RegisterBuiltin(UnitEntry{UnitID: "a", MenuLocation: "group1"}, stubUnit{id: "a"}))
	require.NoError(t, reg.RegisterBuiltin(UnitEntry{UnitID: "b", MenuLocation: "group1"}, stubUnit{id: "b"}))

	tree := reg.GetMenuTree()
	require.Len(t, tree["group1"], 2)
}

func TestChangedFalseWithNoWatchedDirs(t *testing.T) {
	reg := New("", "")
	assert.False(t, reg.Changed())
}
