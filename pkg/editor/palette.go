package editor

import "github.com/aretw0/botcraft/pkg/domain"

// PaletteEntry describes one draggable node type.
type PaletteEntry struct {
	Kind        domain.NodeKind `json:"kind"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
}

var palette = []PaletteEntry{
	{domain.KindInput, "Start / User Input", "Entry point holding the initial prompt."},
	{domain.KindAgent, "Smart Agent", "LLM step with a system instruction and prompt template."},
	{domain.KindTool, "Web Search", "Built-in search capability."},
	{domain.KindExternalConnector, "MCP Server", "Tools served by an external MCP server."},
	{domain.KindEmailAction, "Email Sender", "Sends the upstream output by email."},
}

// Palette lists the node types a user can place.
func Palette() []PaletteEntry {
	out := make([]PaletteEntry, len(palette))
	copy(out, palette)
	return out
}

// Palette placement range, per axis.
const (
	placementMin  = 100
	placementSpan = 300
)
