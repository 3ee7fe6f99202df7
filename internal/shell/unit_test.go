package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitRunRejectsCommandNotAllowed(t *testing.T) {
	u := Unit{}
	out, err := u.Run(context.Background(), map[string]any{"command": "rm -rf /"}, map[string]any{
		"allowed_commands": []string{"ls:*"},
	})
	require.NoError(t, err)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["output"], "rejected")
}

func TestUnitRunFailFastErrorsOnRejectedCommand(t *testing.T) {
	u := Unit{}
	_, err := u.Run(context.Background(), map[string]any{"command": "rm -rf /"}, map[string]any{
		"allowed_commands": []string{"ls:*"},
		"error_behavior":   "fail_fast",
	})
	require.Error(t, err)
}

func TestUnitRunMissingCommandErrors(t *testing.T) {
	u := Unit{}
	_, err := u.Run(context.Background(), map[string]any{}, map[string]any{})
	require.Error(t, err)
}

func TestUnitRunExecutesAllowedCommand(t *testing.T) {
	u := Unit{}
	out, err := u.Run(context.Background(), map[string]any{"command": "echo hello"}, map[string]any{
		"allowed_commands": []string{"echo:*"},
		"output_mode":      "stdout",
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "hello\n", out["output"])
}

func TestUnitRunFailFastErrorsOnNonZeroExit(t *testing.T) {
	u := Unit{}
	_, err := u.Run(context.Background(), map[string]any{"command": "sh -c \"exit 1\""}, map[string]any{
		"allowed_commands": []string{"sh:*"},
		"error_behavior":   "fail_fast",
	})
	require.Error(t, err)
}

func TestUnitRunPassToModelKeepsNonZeroExitAsOutput(t *testing.T) {
	u := Unit{}
	out, err := u.Run(context.Background(), map[string]any{"command": "sh -c \"exit 1\""}, map[string]any{
		"allowed_commands": []string{"sh:*"},
	})
	require.NoError(t, err)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, 1, out["exit_code"])
}

func TestDecodeShellConfigAppliesDefaults(t *testing.T) {
	cfg, err := decodeShellConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, OutputCombined, cfg.OutputMode)
	assert.Equal(t, ErrorBehaviorPassToModel, cfg.ErrorBehavior)
}

func TestEnvSliceFormatsKeyValuePairs(t *testing.T) {
	env := envSlice(map[string]string{"FOO": "bar"})
	require.Len(t, env, 1)
	assert.Equal(t, "FOO=bar", env[0])
}

func TestEnvSliceNilForEmptyMap(t *testing.T) {
	assert.Nil(t, envSlice(nil))
}
