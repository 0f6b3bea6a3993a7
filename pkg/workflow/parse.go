package workflow

import (
	"fmt"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/mitchellh/mapstructure"
)

// Older payloads name some fields differently.
var fieldAliases = map[string]string{
	"userPrompt": domain.FieldInitialPrompt,
	"prompt":     domain.FieldPromptTemplate,
	"email":      domain.FieldReceiverEmail,
	"command":    domain.FieldServerCommand,
}

// Parse rebuilds an editable graph from a wire request, keeping node ids.
// Unknown data keys (such as styling left by other editors) are dropped.
// Nodes get an automatic left-to-right layout since the wire format has no positions.
func Parse(req Request, opts ...graph.Option) (*graph.Graph, error) {
	doc := &domain.GraphDocument{Nodes: make([]domain.NodeRecord, 0, len(req.Nodes))}
	for _, n := range req.Nodes {
		kind, err := domain.ParseKind(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		cfg, err := decodeConfig(kind, n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		doc.Nodes = append(doc.Nodes, domain.NodeRecord{ID: n.ID, Kind: kind, Data: domain.Fields(cfg)})
	}
	for _, e := range req.Edges {
		doc.Edges = append(doc.Edges, domain.Edge{Source: e.Source, Target: e.Target})
	}

	g, err := graph.FromDocument(doc, opts...)
	if err != nil {
		return nil, err
	}
	g.Layout(graph.DefaultLayoutConfig)
	return g, nil
}

// decodeConfig maps loosely typed node data onto the kind's config struct.
func decodeConfig(kind domain.NodeKind, data map[string]any) (domain.Config, error) {
	cfg, err := domain.NewConfig(kind)
	if err != nil {
		return nil, err
	}

	input := make(map[string]any, len(data))
	for k, v := range data {
		if canonical, ok := fieldAliases[k]; ok {
			if _, taken := data[canonical]; !taken {
				k = canonical
			}
		}
		input[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(input); err != nil {
		return nil, err
	}
	return cfg, nil
}
