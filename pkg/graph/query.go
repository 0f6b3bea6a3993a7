package graph

import (
	"github.com/aretw0/botcraft/pkg/domain"
)

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Has reports whether a node with the id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (domain.Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of every node in insertion order.
func (g *Graph) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}

// NodesOfKind returns the nodes of one kind in insertion order.
func (g *Graph) NodesOfKind(kind domain.NodeKind) []domain.Node {
	var out []domain.Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == kind {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []domain.Edge {
	out := make([]domain.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// HasEdge reports whether the edge source->target exists.
func (g *Graph) HasEdge(source, target string) bool {
	for _, e := range g.edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// EdgesOf returns every edge touching id.
func (g *Graph) EdgesOf(id string) []domain.Edge {
	var out []domain.Edge
	for _, e := range g.edges {
		if e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the ids of nodes with an edge into id.
func (g *Graph) Incoming(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e.Source)
		}
	}
	return out
}

// Outgoing returns the ids of nodes id has an edge into.
func (g *Graph) Outgoing(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Roots returns nodes without incoming edges, in insertion order.
func (g *Graph) Roots() []string {
	indeg := g.inDegrees()
	var out []string
	for _, id := range g.order {
		if indeg[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

func (g *Graph) inDegrees() map[string]int {
	indeg := make(map[string]int, len(g.order))
	for _, e := range g.edges {
		indeg[e.Target]++
	}
	return indeg
}

// outgoingAdjacency maps each source to its targets in edge order.
func (g *Graph) outgoingAdjacency() map[string][]string {
	adj := make(map[string][]string, len(g.order))
	for _, e := range g.edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// Snapshot returns a deep copy of the graph, including its id history.
func (g *Graph) Snapshot() *Graph {
	cp := &Graph{
		nodes:   make(map[string]*domain.Node, len(g.nodes)),
		order:   append([]string(nil), g.order...),
		edges:   g.Edges(),
		retired: make(map[string]struct{}, len(g.retired)),
		newID:   g.newID,
	}
	for id, n := range g.nodes {
		c := n.Clone()
		cp.nodes[id] = &c
	}
	for id := range g.retired {
		cp.retired[id] = struct{}{}
	}
	return cp
}
