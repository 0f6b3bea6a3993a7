package editor

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/aretw0/botcraft/internal/logging"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/aretw0/botcraft/pkg/schema"
)

// Editor applies user actions to a workflow graph.
// It is not safe for concurrent use.
type Editor struct {
	graph     *graph.Graph
	view      Presentation
	policy    CyclePolicy
	rng       *rand.Rand
	hooks     domain.EditorHooks
	logger    *slog.Logger
	graphOpts []graph.Option
}

// New creates an editor over g. A nil graph starts an empty canvas.
func New(g *graph.Graph, opts ...Option) *Editor {
	e := &Editor{
		policy: RejectCycles,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if g == nil {
		g = graph.New(e.graphOpts...)
	}
	e.graph = g
	return e
}

// Restore rebuilds an editor from a stored snapshot and selection.
// A selection that no longer names a node is dropped.
func Restore(doc *domain.GraphDocument, selected string, opts ...Option) (*Editor, error) {
	e := New(nil, opts...)
	g, err := graph.FromDocument(doc, e.graphOpts...)
	if err != nil {
		return nil, err
	}
	e.graph = g
	if g.Has(selected) {
		e.view.selectNode(selected)
	}
	return e, nil
}

// Graph exposes the underlying graph for read access.
func (e *Editor) Graph() *graph.Graph { return e.graph }

// Presentation returns the current view state.
func (e *Editor) Presentation() Presentation { return e.view }

// Snapshot returns a serializable copy of the graph.
func (e *Editor) Snapshot() *domain.GraphDocument { return e.graph.Document() }

// SelectNode marks id as the selected node.
func (e *Editor) SelectNode(id string) error {
	if !e.graph.Has(id) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownNode, id)
	}
	e.view.selectNode(id)
	return nil
}

// ClearSelection deselects any node.
func (e *Editor) ClearSelection() { e.view.clear() }

// Selected returns the selected node.
func (e *Editor) Selected() (domain.Node, bool) {
	id, ok := e.view.Selected()
	if !ok {
		return domain.Node{}, false
	}
	return e.graph.Node(id)
}

// AddNodeFromPalette places a node of the given kind with its default config
// at a random offset on the canvas. The selection is left unchanged.
func (e *Editor) AddNodeFromPalette(kind domain.NodeKind) (domain.Node, error) {
	pos := domain.Position{
		X: placementMin + e.rng.Float64()*placementSpan,
		Y: placementMin + e.rng.Float64()*placementSpan,
	}
	return e.AddNode(kind, nil, pos)
}

// AddNode places a node with an explicit config and position.
// A nil config uses the kind's defaults.
func (e *Editor) AddNode(kind domain.NodeKind, cfg domain.Config, pos domain.Position) (domain.Node, error) {
	n, err := e.graph.AddNode(kind, cfg, pos)
	if err != nil {
		return domain.Node{}, err
	}
	e.logger.Debug("Node added", "node_id", n.ID, "kind", kind)
	if e.hooks.OnNodeAdded != nil {
		e.hooks.OnNodeAdded(&domain.NodeEvent{EventBase: domain.NewEventBase(domain.EventNodeAdded), NodeID: n.ID, Kind: kind})
	}
	return n, nil
}

// UpdateSelectedNodeField sets one config field of the selected node.
func (e *Editor) UpdateSelectedNodeField(key, value string) error {
	id, ok := e.view.Selected()
	if !ok {
		return domain.ErrNoSelection
	}
	return e.UpdateNodeField(id, key, value)
}

// UpdateNodeField sets one config field of a node after validating it
// against the kind's schema. Rejected edits leave the node untouched.
func (e *Editor) UpdateNodeField(id, key, value string) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownNode, id)
	}
	if _, ok := n.Config.Get(key); !ok {
		return fmt.Errorf("%w: %q is not a %s field", domain.ErrUnknownField, key, n.Kind)
	}
	if err := schema.For(n.Kind).ValidateField(key, value); err != nil {
		return err
	}
	if err := e.graph.UpdateNodeConfig(id, key, value); err != nil {
		return err
	}
	if e.hooks.OnNodeUpdated != nil {
		e.hooks.OnNodeUpdated(&domain.NodeEvent{EventBase: domain.NewEventBase(domain.EventNodeUpdated), NodeID: id, Kind: n.Kind, Field: key})
	}
	return nil
}

// MoveNode changes a node's canvas position.
func (e *Editor) MoveNode(id string, pos domain.Position) error {
	return e.graph.MoveNode(id, pos)
}

// DeleteSelected removes the selected node and its edges, then clears the selection.
// It reports whether anything was deleted.
func (e *Editor) DeleteSelected() bool {
	id, ok := e.view.Selected()
	if !ok {
		return false
	}
	return e.DeleteNode(id)
}

// DeleteNode removes a node and its edges. The selection is cleared if it pointed at id.
func (e *Editor) DeleteNode(id string) bool {
	n, ok := e.graph.Node(id)
	if !ok {
		return false
	}
	edges := e.graph.EdgesOf(id)
	e.graph.RemoveNode(id)
	if sel, _ := e.view.Selected(); sel == id {
		e.view.clear()
	}
	e.logger.Debug("Node removed", "node_id", id, "edges", len(edges))
	if e.hooks.OnEdgeRemoved != nil {
		for _, edge := range edges {
			e.hooks.OnEdgeRemoved(&domain.EdgeEvent{EventBase: domain.NewEventBase(domain.EventEdgeRemoved), Edge: edge})
		}
	}
	if e.hooks.OnNodeRemoved != nil {
		e.hooks.OnNodeRemoved(&domain.NodeEvent{EventBase: domain.NewEventBase(domain.EventNodeRemoved), NodeID: id, Kind: n.Kind})
	}
	return true
}

// Connect adds an edge from source to target.
// Under RejectCycles, self-loops and cycle-closing edges fail with ErrSelfLoop or ErrCycle.
// Connecting an existing edge again is a no-op.
func (e *Editor) Connect(source, target string) error {
	for _, id := range []string{source, target} {
		if !e.graph.Has(id) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownNode, id)
		}
	}
	if e.policy == RejectCycles {
		if source == target {
			return domain.ErrSelfLoop
		}
		if e.graph.WouldCreateCycle(source, target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrCycle, source, target)
		}
	}
	added, err := e.graph.AddEdge(source, target)
	if err != nil {
		return err
	}
	if added && e.hooks.OnEdgeAdded != nil {
		e.hooks.OnEdgeAdded(&domain.EdgeEvent{
			EventBase: domain.NewEventBase(domain.EventEdgeAdded),
			Edge:      domain.Edge{Source: source, Target: target},
		})
	}
	return nil
}

// Disconnect removes the edge from source to target. It reports whether it existed.
func (e *Editor) Disconnect(source, target string) bool {
	if !e.graph.RemoveEdge(source, target) {
		return false
	}
	if e.hooks.OnEdgeRemoved != nil {
		e.hooks.OnEdgeRemoved(&domain.EdgeEvent{
			EventBase: domain.NewEventBase(domain.EventEdgeRemoved),
			Edge:      domain.Edge{Source: source, Target: target},
		})
	}
	return true
}
