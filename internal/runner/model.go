package runner

import (
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/adkflow/pkg/model"
	"github.com/kadirpekel/adkflow/pkg/model/anthropic"
	"github.com/kadirpekel/adkflow/pkg/model/gemini"
	"github.com/kadirpekel/adkflow/pkg/model/ollama"
	"github.com/kadirpekel/adkflow/pkg/model/openai"
)

// resolveModel maps an AgentIR.Model name to a concrete model.LLM by
// provider-prefix convention, the way a workflow author names models in the
// visual editor ("gemini-2.0-flash", "claude-3-5-sonnet-latest",
// "gpt-4o-mini", "ollama/llama3.2"). API keys come from the environment
// (spec 6.4); a missing key surfaces as a CredentialError from the caller.
func resolveModel(name string, temperature float64) (model.LLM, error) {
	switch {
	case strings.HasPrefix(name, "gemini"):
		return gemini.New(gemini.Config{
			APIKey:      os.Getenv("GOOGLE_API_KEY"),
			Model:       name,
			Temperature: temperature,
		})
	case strings.HasPrefix(name, "claude"):
		t := temperature
		return anthropic.New(anthropic.Config{
			APIKey:      os.Getenv("ANTHROPIC_API_KEY"),
			Model:       name,
			Temperature: &t,
		})
	case strings.HasPrefix(name, "gpt") || strings.HasPrefix(name, "o1") || strings.HasPrefix(name, "o3"):
		t := temperature
		return openai.New(openai.Config{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       name,
			Temperature: &t,
		})
	case strings.HasPrefix(name, "ollama/"):
		t := temperature
		return ollama.New(ollama.Config{
			BaseURL:     envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:       strings.TrimPrefix(name, "ollama/"),
			Temperature: &t,
		})
	default:
		return nil, fmt.Errorf("model %q: no matching provider (expected a gemini-/claude-/gpt-/ollama- prefixed name)", name)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
