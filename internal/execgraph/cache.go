package execgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes node outputs keyed by a canonical hash of (node id, inputs,
// config, is_changed value), mirroring the original's ExecutionCache. NaN
// never equals itself -- the canonical cache-busting idiom for "always
// treat this as changed" -- which is preserved by hashing is_changed's
// string form rather than comparing floats directly.
type Cache struct {
	lru *lru.Cache[string, entry]
}

type entry struct {
	key     string
	outputs map[string]any
}

// NewCache creates an in-memory LRU cache holding up to capacity entries.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = 1024
	}
	c, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("execgraph: create cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

// ComputeKey builds the canonical SHA-256 cache key for one node execution.
func ComputeKey(nodeID string, inputs, config map[string]any, isChanged any) string {
	payload := map[string]any{
		"node_id":    nodeID,
		"inputs":     makeHashable(inputs),
		"config":     makeHashable(config),
		"is_changed": fmt.Sprintf("%v", isChanged),
	}
	data, _ := json.Marshal(makeHashable(payload))
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// makeHashable recursively converts maps to sorted key/value pairs and
// slices/sets to ordered lists so two semantically-equal structures with
// different map iteration order always canonicalize to the same JSON.
func makeHashable(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([][2]any, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, [2]any{k, makeHashable(t[k])})
		}
		return pairs
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = makeHashable(e)
		}
		return out
	case float64:
		if math.IsNaN(t) {
			return "NaN"
		}
		return t
	default:
		return t
	}
}

// ShouldExecute reports whether a node must (re-)run: true when there is no
// prior cache entry, when isChanged is NaN (forces execution every time,
// matching float('nan') != float('nan') in the original), or when
// alwaysExecute is set.
func (c *Cache) ShouldExecute(key string, alwaysExecute bool, isChanged any) bool {
	if alwaysExecute {
		return true
	}
	if f, ok := isChanged.(float64); ok && math.IsNaN(f) {
		return true
	}
	_, ok := c.lru.Get(key)
	return !ok
}

// Get returns the cached outputs for key, if present.
func (c *Cache) Get(key string) (map[string]any, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return e.outputs, true
}

// Put stores outputs under key.
func (c *Cache) Put(key string, outputs map[string]any) {
	c.lru.Add(key, entry{key: key, outputs: outputs})
}
