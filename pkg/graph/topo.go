package graph

import (
	"fmt"
)

// TopologicalOrder returns node ids so that every edge points forward.
// Ties are broken by insertion order, so the result is deterministic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indeg := g.inDegrees()
	adj := g.outgoingAdjacency()
	rank := make(map[string]int, len(g.order))
	for i, id := range g.order {
		rank[id] = i
	}

	var ready []string
	for _, id := range g.order {
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		// pick the earliest inserted ready node
		best := 0
		for i := range ready {
			if rank[ready[i]] < rank[ready[best]] {
				best = i
			}
		}
		id := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, id)

		for _, next := range adj[id] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) != len(g.order) {
		return nil, &StructuralError{
			Kind: KindCycle,
			Msg:  fmt.Sprintf("%d of %d nodes sit on or behind a cycle", len(g.order)-len(order), len(g.order)),
		}
	}
	return order, nil
}

// Levels assigns each node its longest distance from a root.
// It fails on cyclic graphs.
func (g *Graph) Levels() (map[string]int, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	levels := make(map[string]int, len(order))
	adj := g.outgoingAdjacency()
	for _, id := range order {
		for _, next := range adj[id] {
			if levels[id]+1 > levels[next] {
				levels[next] = levels[id] + 1
			}
		}
	}
	return levels, nil
}
