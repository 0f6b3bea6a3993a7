package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/oklog/ulid/v2"
)

// IDFunc produces node identifiers.
type IDFunc func() string

// Graph is an editable workflow graph.
type Graph struct {
	nodes   map[string]*domain.Node
	order   []string
	edges   []domain.Edge
	retired map[string]struct{}
	newID   IDFunc
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDFunc replaces the default ULID generator.
func WithIDFunc(fn IDFunc) Option {
	return func(g *Graph) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:   make(map[string]*domain.Node),
		retired: make(map[string]struct{}),
		newID:   func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode inserts a node of the given kind and returns it.
// A nil config is replaced by the kind's defaults. The config is copied.
func (g *Graph) AddNode(kind domain.NodeKind, cfg domain.Config, pos domain.Position) (domain.Node, error) {
	if !kind.Valid() {
		return domain.Node{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if cfg == nil {
		var err error
		if cfg, err = domain.DefaultConfig(kind); err != nil {
			return domain.Node{}, err
		}
	} else {
		if cfg.Kind() != kind {
			return domain.Node{}, &StructuralError{
				Kind: KindInvalidNode,
				Msg:  fmt.Sprintf("config for %s given to a %s node", cfg.Kind(), kind),
			}
		}
		cfg = cfg.Clone()
	}

	n := &domain.Node{ID: g.nextID(), Kind: kind, Position: pos, Config: cfg}
	g.insert(n)
	return n.Clone(), nil
}

// nextID returns an id that has never been held by a node of this graph.
func (g *Graph) nextID() string {
	for {
		id := g.newID()
		if _, live := g.nodes[id]; live {
			continue
		}
		if _, dead := g.retired[id]; dead {
			continue
		}
		return id
	}
}

func (g *Graph) insert(n *domain.Node) {
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
}

// UpdateNodeConfig sets one config field of a node.
// It returns ErrUnknownNode or ErrUnknownField without changing anything.
func (g *Graph) UpdateNodeConfig(id, key, value string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownNode, id)
	}
	return n.Config.Set(key, value)
}

// MoveNode changes the canvas position of a node.
func (g *Graph) MoveNode(id string, pos domain.Position) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownNode, id)
	}
	n.Position = pos
	return nil
}

// RemoveNode deletes a node and every edge touching it.
// It reports whether the node existed.
func (g *Graph) RemoveNode(id string) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	delete(g.nodes, id)
	g.retired[id] = struct{}{}
	g.order = slices.DeleteFunc(g.order, func(o string) bool { return o == id })
	g.edges = slices.DeleteFunc(g.edges, func(e domain.Edge) bool { return e.Touches(id) })
	return true
}

// AddEdge connects source to target. Both endpoints must exist.
// Adding an edge that is already present is a no-op and reports false.
func (g *Graph) AddEdge(source, target string) (bool, error) {
	for _, id := range []string{source, target} {
		if _, ok := g.nodes[id]; !ok {
			return false, fmt.Errorf("%w: %s", domain.ErrUnknownNode, id)
		}
	}
	e := domain.Edge{Source: source, Target: target}
	if g.HasEdge(source, target) {
		return false, nil
	}
	g.edges = append(g.edges, e)
	return true, nil
}

// RemoveEdge deletes the edge from source to target if present.
func (g *Graph) RemoveEdge(source, target string) bool {
	before := len(g.edges)
	g.edges = slices.DeleteFunc(g.edges, func(e domain.Edge) bool {
		return e.Source == source && e.Target == target
	})
	return len(g.edges) != before
}
