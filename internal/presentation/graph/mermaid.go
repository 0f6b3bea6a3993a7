package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/botcraft/pkg/domain"
)

// GraphOverlay contains editor state to visualize on the graph.
type GraphOverlay struct {
	// Selected is the node highlighted in the editor, if any.
	Selected string
	// Invalid lists nodes that fail schema validation.
	Invalid []string
}

// shape returns the Mermaid brackets used for a node kind.
func shape(kind domain.NodeKind) (string, string) {
	switch kind {
	case domain.KindInput:
		return "((", "))" // Circle
	case domain.KindTool:
		return "[[", "]]" // Subroutine
	case domain.KindExternalConnector:
		return "{{", "}}" // Hexagon
	case domain.KindEmailAction:
		return "[/", "/]" // Parallelogram (output)
	default:
		return "[", "]"
	}
}

// GenerateMermaid produces a Mermaid flowchart for a workflow graph.
// Nodes are labelled with their config label and kind; an overlay marks
// the selected node and invalid nodes.
func GenerateMermaid(doc *domain.GraphDocument, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range doc.Nodes {
		safeID := sanitizeMermaidID(node.ID)
		opener, closer := shape(node.Kind)

		label := node.Data[domain.FieldLabel]
		if label == "" {
			label = node.ID
		}
		label = strings.ReplaceAll(label, "\"", "'")
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> <i>%s</i>\"%s\n", safeID, opener, label, node.Kind, closer)
	}

	for _, e := range doc.Edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target))
	}

	if overlay != nil && (overlay.Selected != "" || len(overlay.Invalid) > 0) {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on light and dark themes
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Invalid {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s invalid;\n", safeID)
			}
		}
		if overlay.Selected != "" {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
