// Package substitute resolves {variable} placeholders against a workflow's
// declared global variables (spec section 4.6). It reuses the teacher's
// regex-based placeholder scan (pkg/instruction.Template) but widens it to
// walk every string reachable from a node's data map or list, rather than a
// single instruction string, and only substitutes identifiers present in
// the known variable set -- unknown placeholders are left literal.
package substitute

import (
	"regexp"
	"strings"

	"github.com/kadirpekel/adkflow/internal/compiler/ir"
)

// placeholderRegex matches {identifier} tokens; unlike the teacher's
// instruction template this package has no optional-marker or scoped-prefix
// syntax, since global variables are a flat name -> value map.
var placeholderRegex = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Result reports how many placeholders were resolved.
type Result struct {
	Substitutions int
}

// Apply walks every node's Data map in place, replacing {name} tokens with
// vars[name] wherever name is known. It is idempotent: once applied, a
// second call against the same data and vars makes no further changes,
// because substituted values never themselves contain {name} syntax unless
// the variable value does -- in which case re-running intentionally expands
// it again, matching the teacher's InjectState being safe to call twice on
// already-resolved text with no matching placeholders left.
func Apply(nodeData []map[string]any, vars map[string]string) Result {
	var res Result
	for _, data := range nodeData {
		res.Substitutions += walkMap(data, vars)
	}
	return res
}

func walkMap(m map[string]any, vars map[string]string) int {
	count := 0
	for k, v := range m {
		m[k], count = walkValue(v, vars, count)
	}
	return count
}

func walkValue(v any, vars map[string]string, count int) (any, int) {
	switch t := v.(type) {
	case string:
		replaced, n := substituteString(t, vars)
		return replaced, count + n
	case map[string]any:
		for k, vv := range t {
			t[k], count = walkValue(vv, vars, count)
		}
		return t, count
	case []any:
		for i, vv := range t {
			t[i], count = walkValue(vv, vars, count)
		}
		return t, count
	default:
		return v, count
	}
}

// ApplyToIR substitutes {name} placeholders directly against the compiled
// WorkflowIR's string-bearing fields: every agent's Instruction and
// Description, and every custom node's Config map (spec 3.5's invariant
// frames idempotent substitution in terms of the IR, not the pre-transform
// project data, so this is the entry point compile() uses). Re-running it
// against its own output is a no-op for any variable value that does not
// itself contain {name} syntax.
func ApplyToIR(w *ir.WorkflowIR, vars map[string]string) Result {
	var res Result
	if len(vars) == 0 {
		return res
	}
	for _, air := range w.AllAgents {
		var n int
		air.Instruction, n = substituteString(air.Instruction, vars)
		res.Substitutions += n
		air.Description, n = substituteString(air.Description, vars)
		res.Substitutions += n
	}
	for _, cn := range w.CustomNodes {
		res.Substitutions += walkMap(cn.Config, vars)
	}
	for _, cn := range w.ContextAggregators {
		res.Substitutions += walkMap(cn.Config, vars)
	}
	return res
}

func substituteString(s string, vars map[string]string) (string, int) {
	n := 0
	out := placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{"), "}")
		if val, ok := vars[name]; ok {
			n++
			return val
		}
		return match
	})
	return out, n
}
