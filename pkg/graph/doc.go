// Package graph holds the editable workflow graph: an ordered set of typed nodes
// and the directed edges between them.
//
// The graph enforces its own structural rules. Every edge endpoint refers to a
// node that exists, removing a node removes the edges touching it, node ids are
// never reused and a config update can only change a field of the node's own
// kind. Whether cycles are acceptable is an editor policy; the graph itself
// accepts them and offers FindCycle and TopologicalOrder for callers that care.
//
// A Graph is not safe for concurrent use. Callers serialize access, either by
// owning it from a single goroutine or through session.Manager.WithLock.
package graph
