package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/adkflow/pkg/flowunit"
)

func TestTokenCounterRun(t *testing.T) {
	u := NewTokenCounter()
	assert.Equal(t, "token_counter", u.UnitID())

	out, err := u.Run(context.Background(), map[string]any{"text": "hello world"}, nil)
	require.NoError(t, err)
	count, ok := out["count"].(int)
	require.True(t, ok)
	assert.Greater(t, count, 0)
}

func TestTokenCounterRunMissingText(t *testing.T) {
	u := NewTokenCounter()
	_, err := u.Run(context.Background(), map[string]any{}, nil)
	require.Error(t, err)
}

func TestTokenCounterDescriptor(t *testing.T) {
	d, ok := NewTokenCounter().(flowunit.Describable)
	require.True(t, ok)
	desc := d.Descriptor()
	require.Len(t, desc.Inputs, 1)
	assert.Equal(t, "text", desc.Inputs[0].Name)
}
