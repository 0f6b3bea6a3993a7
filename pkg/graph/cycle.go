package graph

import (
	"fmt"
)

// Reachable reports whether target can be reached from source by following edges.
// A node reaches itself only through a cycle or self-loop.
func (g *Graph) Reachable(source, target string) bool {
	adj := g.outgoingAdjacency()
	visited := make(map[string]bool)
	stack := append([]string(nil), adj[source]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, adj[id]...)
	}
	return false
}

// WouldCreateCycle reports whether adding source->target closes a cycle.
func (g *Graph) WouldCreateCycle(source, target string) bool {
	return source == target || g.Reachable(target, source)
}

// FindCycle returns the node ids of one cycle, first node repeated at the end,
// or nil if the graph is acyclic.
func (g *Graph) FindCycle() []string {
	adj := g.outgoingAdjacency()

	// Colors: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done)
	color := make(map[string]int, len(g.order))
	var path []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = 1
		path = append(path, id)
		for _, next := range adj[id] {
			switch color[next] {
			case 1:
				for i, p := range path {
					if p == next {
						cycle = append(append([]string(nil), path[i:]...), next)
						return true
					}
				}
			case 0:
				if dfs(next) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = 2
		return false
	}

	for _, id := range g.order {
		if color[id] == 0 && dfs(id) {
			return cycle
		}
	}
	return nil
}

// Acyclic returns a StructuralError naming a cycle if one exists.
func (g *Graph) Acyclic() error {
	if c := g.FindCycle(); c != nil {
		return &StructuralError{Kind: KindCycle, Msg: fmt.Sprintf("cycle detected: %v", c)}
	}
	return nil
}
