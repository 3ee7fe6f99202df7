package shell

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

func decodeShellConfig(raw map[string]any) (Config, error) {
	cfg := Config{
		TimeoutSeconds: 30,
		OutputMode:     OutputCombined,
		ErrorBehavior:  ErrorBehaviorPassToModel,
	}
	if raw == nil {
		return cfg, nil
	}
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode shell command config: %w", err)
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.OutputMode == "" {
		cfg.OutputMode = OutputCombined
	}
	if cfg.ErrorBehavior == "" {
		cfg.ErrorBehavior = ErrorBehaviorPassToModel
	}
	return cfg, nil
}
