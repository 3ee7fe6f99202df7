package execgraph

import (
	"fmt"
	"sort"
)

// CycleError reports a dependency cycle found during layering.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("execution graph contains a cycle among nodes: %v", e.Nodes)
}

// TopologicalLayers groups the given node subset into layers via Kahn's
// algorithm: layer 0 holds every node with zero in-degree (restricted to
// the subset), layer 1 every node whose dependencies are all satisfied by
// layer 0, and so on. Nodes within a layer have no dependency on one
// another and may run concurrently.
func (g *Graph) TopologicalLayers(subset map[string]bool) ([][]string, error) {
	inDegree := map[string]int{}
	for id := range subset {
		inDegree[id] = 0
	}
	for id := range subset {
		for _, e := range g.in[id] {
			if subset[e.SourceID] {
				inDegree[id]++
			}
		}
	}

	var layers [][]string
	remaining := len(subset)
	processed := map[string]bool{}

	for remaining > 0 {
		var layer []string
		for id := range subset {
			if !processed[id] && inDegree[id] == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			var stuck []string
			for id := range subset {
				if !processed[id] {
					stuck = append(stuck, id)
				}
			}
			sort.Strings(stuck)
			return nil, &CycleError{Nodes: stuck}
		}
		sort.Strings(layer)
		for _, id := range layer {
			processed[id] = true
			remaining--
			for _, e := range g.out[id] {
				if subset[e.TargetID] && !processed[e.TargetID] {
					inDegree[e.TargetID]--
				}
			}
		}
		layers = append(layers, layer)
	}
	return layers, nil
}
