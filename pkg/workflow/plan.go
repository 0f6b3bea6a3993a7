package workflow

import (
	"errors"
	"fmt"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/aretw0/botcraft/pkg/schema"
)

var (
	// ErrEmptyWorkflow is returned when there is nothing to run.
	ErrEmptyWorkflow = errors.New("workflow has no nodes")
	// ErrNoEntry is returned when no Input node can start the run.
	ErrNoEntry = errors.New("workflow has no input node")
)

// Step is one node in execution order.
type Step struct {
	NodeID string          `json:"node_id"`
	Kind   domain.NodeKind `json:"kind"`
	Label  string          `json:"label"`
	Inputs []string        `json:"inputs,omitempty"`
}

// Plan is the order in which the execution backend will visit the nodes.
type Plan struct {
	Entry string `json:"entry"`
	Steps []Step `json:"steps"`
	// Unreachable lists nodes that no path from the entry reaches.
	Unreachable []string `json:"unreachable,omitempty"`
}

// BuildPlan checks that g is runnable and orders its nodes.
// The entry is the first Input node; the graph must be acyclic.
func BuildPlan(g *graph.Graph) (*Plan, error) {
	if g.Len() == 0 {
		return nil, ErrEmptyWorkflow
	}
	inputs := g.NodesOfKind(domain.KindInput)
	if len(inputs) == 0 {
		return nil, ErrNoEntry
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	p := &Plan{Entry: inputs[0].ID, Steps: make([]Step, 0, len(order))}
	for _, id := range order {
		n, _ := g.Node(id)
		p.Steps = append(p.Steps, Step{NodeID: id, Kind: n.Kind, Label: n.Label(), Inputs: g.Incoming(id)})
		if id != p.Entry && !g.Reachable(p.Entry, id) {
			p.Unreachable = append(p.Unreachable, id)
		}
	}
	return p, nil
}

// Check runs every pre-submit validation: the plan and each node's required fields.
// All problems are reported together.
func Check(g *graph.Graph) error {
	var errs []error
	if _, err := BuildPlan(g); err != nil {
		errs = append(errs, err)
	}
	for _, n := range g.Nodes() {
		if err := schema.ValidateConfig(n.Config); err != nil {
			errs = append(errs, fmt.Errorf("node %q (%s): %w", n.Label(), n.ID, err))
		}
	}
	return errors.Join(errs...)
}
