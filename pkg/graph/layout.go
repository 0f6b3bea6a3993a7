package graph

import (
	"github.com/aretw0/botcraft/pkg/domain"
)

// LayoutConfig controls automatic placement.
type LayoutConfig struct {
	StartX, StartY   float64
	SpacingPrimary   float64 // distance between levels, left to right
	SpacingSecondary float64 // distance between siblings on one level
}

// DefaultLayoutConfig matches the canvas spacing of the editor.
var DefaultLayoutConfig = LayoutConfig{StartX: 100, StartY: 100, SpacingPrimary: 250, SpacingSecondary: 150}

// Layout places nodes left to right by dependency level.
// Each node's level is its longest distance from a root. Cyclic graphs fall
// back to a single row in insertion order.
func (g *Graph) Layout(cfg LayoutConfig) {
	levels, err := g.Levels()
	if err != nil {
		for i, id := range g.order {
			g.nodes[id].Position = domain.Position{X: cfg.StartX + float64(i)*cfg.SpacingPrimary, Y: cfg.StartY}
		}
		return
	}

	slot := make(map[int]int)
	for _, id := range g.order {
		lvl := levels[id]
		g.nodes[id].Position = domain.Position{
			X: cfg.StartX + float64(lvl)*cfg.SpacingPrimary,
			Y: cfg.StartY + float64(slot[lvl])*cfg.SpacingSecondary,
		}
		slot[lvl]++
	}
}
