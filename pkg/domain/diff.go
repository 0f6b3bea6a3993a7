package domain

import (
	"maps"
)

// GraphDiff represents the changes between two graph snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type GraphDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// AddedNodes holds nodes present only in the new snapshot.
	AddedNodes []NodeRecord `json:"added_nodes,omitempty"`

	// UpdatedNodes holds nodes whose config or position changed.
	UpdatedNodes []NodeRecord `json:"updated_nodes,omitempty"`

	// RemovedNodes lists ids that disappeared.
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	AddedEdges   []Edge `json:"added_edges,omitempty"`
	RemovedEdges []Edge `json:"removed_edges,omitempty"`

	// Selected is set when the selection changed. An empty string means cleared.
	Selected *string `json:"selected,omitempty"`
}

// DiffGraphs calculates the difference between two snapshots of a session graph.
// If oldDoc is nil, it returns a diff representing the entire newDoc (initial load).
// It returns nil when nothing changed.
func DiffGraphs(sessionID string, oldDoc, newDoc *GraphDocument) *GraphDiff {
	if newDoc == nil {
		return nil
	}
	if oldDoc == nil {
		oldDoc = &GraphDocument{}
	}

	diff := &GraphDiff{SessionID: sessionID}

	before := make(map[string]NodeRecord, len(oldDoc.Nodes))
	for _, n := range oldDoc.Nodes {
		before[n.ID] = n
	}
	seen := make(map[string]bool, len(newDoc.Nodes))
	for _, n := range newDoc.Nodes {
		seen[n.ID] = true
		prev, ok := before[n.ID]
		switch {
		case !ok:
			diff.AddedNodes = append(diff.AddedNodes, n)
		case prev.Kind != n.Kind || prev.Position != n.Position || !maps.Equal(prev.Data, n.Data):
			diff.UpdatedNodes = append(diff.UpdatedNodes, n)
		}
	}
	for _, n := range oldDoc.Nodes {
		if !seen[n.ID] {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	diff.AddedEdges = edgesMissing(newDoc.Edges, oldDoc.Edges)
	diff.RemovedEdges = edgesMissing(oldDoc.Edges, newDoc.Edges)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// edgesMissing returns the edges of a that are absent from b, in a's order.
func edgesMissing(a, b []Edge) []Edge {
	set := make(map[Edge]struct{}, len(b))
	for _, e := range b {
		set[e] = struct{}{}
	}
	var out []Edge
	for _, e := range a {
		if _, ok := set[e]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.UpdatedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0 &&
		d.Selected == nil
}
