package graph

import (
	"fmt"
)

// Validate checks that the graph can be executed: every edge has live endpoints,
// there are no self-loops and no cycles.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			return &StructuralError{
				Kind: KindDanglingEdge,
				Msg:  fmt.Sprintf("edge references unknown node: %q -> %q", e.Source, e.Target),
			}
		}
		if e.Source == e.Target {
			return &StructuralError{
				Kind: KindSelfLoop,
				Msg:  fmt.Sprintf("self-referential edge: %q -> %q", e.Source, e.Target),
			}
		}
	}
	return g.Acyclic()
}
