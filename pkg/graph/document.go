package graph

import (
	"fmt"

	"github.com/aretw0/botcraft/pkg/domain"
)

// Document returns a serializable snapshot of the graph.
func (g *Graph) Document() *domain.GraphDocument {
	doc := &domain.GraphDocument{
		Nodes: make([]domain.NodeRecord, 0, len(g.order)),
		Edges: g.Edges(),
	}
	for _, id := range g.order {
		doc.Nodes = append(doc.Nodes, g.nodes[id].Record())
	}
	return doc
}

// FromDocument rebuilds a graph from a snapshot, keeping its node ids.
// Duplicate ids, unknown kinds, foreign config keys and dangling edges are rejected.
// Duplicate edges are collapsed.
func FromDocument(doc *domain.GraphDocument, opts ...Option) (*Graph, error) {
	g := New(opts...)
	if doc == nil {
		return g, nil
	}
	for _, rec := range doc.Nodes {
		if rec.ID == "" {
			return nil, &StructuralError{Kind: KindInvalidNode, Msg: "node without id"}
		}
		if g.Has(rec.ID) {
			return nil, &StructuralError{Kind: KindDuplicateID, Msg: fmt.Sprintf("duplicate node ID: %q", rec.ID)}
		}
		cfg, err := domain.ConfigFromFields(rec.Kind, rec.Data)
		if err != nil {
			return nil, &StructuralError{Kind: KindInvalidNode, Msg: fmt.Sprintf("node %q: %v", rec.ID, err)}
		}
		g.insert(&domain.Node{ID: rec.ID, Kind: rec.Kind, Position: rec.Position, Config: cfg})
	}
	for _, e := range doc.Edges {
		if _, err := g.AddEdge(e.Source, e.Target); err != nil {
			return nil, &StructuralError{
				Kind: KindDanglingEdge,
				Msg:  fmt.Sprintf("edge %q -> %q: %v", e.Source, e.Target, err),
			}
		}
	}
	return g, nil
}
