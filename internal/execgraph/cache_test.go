package execgraph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeKeyStableUnderMapOrdering(t *testing.T) {
	inputs1 := map[string]any{"a": 1.0, "b": 2.0}
	inputs2 := map[string]any{"b": 2.0, "a": 1.0}
	k1 := ComputeKey("n1", inputs1, map[string]any{}, nil)
	k2 := ComputeKey("n1", inputs2, map[string]any{}, nil)
	assert.Equal(t, k1, k2)
}

func TestComputeKeyDiffersOnNodeOrInputs(t *testing.T) {
	base := ComputeKey("n1", map[string]any{"a": 1.0}, nil, nil)
	otherNode := ComputeKey("n2", map[string]any{"a": 1.0}, nil, nil)
	otherInput := ComputeKey("n1", map[string]any{"a": 2.0}, nil, nil)
	assert.NotEqual(t, base, otherNode)
	assert.NotEqual(t, base, otherInput)
}

func TestShouldExecuteForcedByAlwaysExecute(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)
	key := ComputeKey("n1", nil, nil, nil)
	c.Put(key, map[string]any{"x": 1})
	assert.True(t, c.ShouldExecute(key, true, nil))
}

func TestShouldExecuteForcedByNaN(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)
	key := ComputeKey("n1", nil, nil, math.NaN())
	c.Put(key, map[string]any{"x": 1})
	assert.True(t, c.ShouldExecute(key, false, math.NaN()))
}

func TestShouldExecuteFalseWhenCached(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)
	key := ComputeKey("n1", nil, nil, nil)
	assert.True(t, c.ShouldExecute(key, false, nil)) // nothing cached yet
	c.Put(key, map[string]any{"x": 1})
	assert.False(t, c.ShouldExecute(key, false, nil))
}

func TestCacheGetReturnsStoredOutputs(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)
	key := "k1"
	c.Put(key, map[string]any{"y": 2})
	out, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, 2, out["y"])

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestNewCacheDefaultsCapacity(t *testing.T) {
	c, err := NewCache(0)
	require.NoError(t, err)
	require.NotNil(t, c)
}
