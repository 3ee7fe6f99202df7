// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runnerconfig

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	envWithDefault = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`)
	envBraced      = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
)

// expandEnvVars resolves ${VAR} and ${VAR:-default} references against the
// process environment, leaving the string untouched if it has neither.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	s = envWithDefault.ReplaceAllStringFunc(s, func(match string) string {
		parts := envWithDefault.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(parts[1]); ok && val != "" {
			return val
		}
		return parts[2]
	})
	return envBraced.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envBraced.FindStringSubmatch(match)[1])
	})
}

// coerceScalar turns an expanded string back into the type koanf would have
// parsed it as, so "${PORT:-8080}" still decodes into an int field.
func coerceScalar(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// expandTree walks a koanf-decoded document, substituting environment
// references in every string leaf before the result is unmarshaled into
// Config (mirrors the teacher's ExpandEnvVarsInData over pkg/config's raw
// koanf map, adapted to runnerconfig's own document shape).
func expandTree(v any) any {
	switch t := v.(type) {
	case string:
		expanded := expandEnvVars(t)
		if expanded != t {
			return coerceScalar(expanded)
		}
		return expanded
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = expandTree(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = expandTree(val)
		}
		return out
	default:
		return v
	}
}
