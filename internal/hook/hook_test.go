package hook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handlerStub(ctx context.Context, hctx *Context, data map[string]any) (Result, map[string]any) {
	return Continue(), data
}

func TestRegisterRejectsEmptyHookName(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Spec{ExtensionID: "ext1", Handler: handlerStub})
	require.Error(t, err)
}

func TestRegisterDefaultsTimeout(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Spec{HookName: "h1", ExtensionID: "ext1", Handler: handlerStub}))
	specs := r.GetHooks("h1")
	require.Len(t, specs, 1)
	assert.Equal(t, 5*time.Second, specs[0].Timeout)
}

func TestRegisterOrdersByPriority(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Spec{HookName: "h1", ExtensionID: "low", Priority: 10, Handler: handlerStub}))
	require.NoError(t, r.Register(Spec{HookName: "h1", ExtensionID: "high", Priority: 1, Handler: handlerStub}))
	specs := r.GetHooks("h1")
	require.Len(t, specs, 2)
	assert.Equal(t, "high", specs[0].ExtensionID)
	assert.Equal(t, "low", specs[1].ExtensionID)
}

func TestRegisterRejectsDuplicateExtensionPerHook(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Spec{HookName: "h1", ExtensionID: "ext1", Handler: handlerStub}))
	err := r.Register(Spec{HookName: "h1", ExtensionID: "ext1", Handler: handlerStub})
	require.Error(t, err)
}

func TestUnregisterRemovesOnlyThatExtension(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Spec{HookName: "h1", ExtensionID: "ext1", Handler: handlerStub}))
	require.NoError(t, r.Register(Spec{HookName: "h1", ExtensionID: "ext2", Handler: handlerStub}))

	r.Unregister("h1", "ext1")
	specs := r.GetHooks("h1")
	require.Len(t, specs, 1)
	assert.Equal(t, "ext2", specs[0].ExtensionID)
}

func TestHasHooksReflectsRegistrations(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasHooks("h1"))
	require.NoError(t, r.Register(Spec{HookName: "h1", ExtensionID: "ext1", Handler: handlerStub}))
	assert.True(t, r.HasHooks("h1"))
}
