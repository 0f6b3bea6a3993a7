package workflow

import (
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
)

// Serialize flattens g into an execution request.
//
// When initialInput is empty it is taken from the first Input node's
// initialPrompt, so the request always carries the seed prompt the user sees.
// The request shares no state with g.
func Serialize(g *graph.Graph, initialInput string) Request {
	return SerializeDocument(g.Document(), initialInput)
}

// SerializeDocument is Serialize for a stored snapshot.
func SerializeDocument(doc *domain.GraphDocument, initialInput string) Request {
	req := Request{
		Nodes:        make([]Node, 0, len(doc.Nodes)),
		Edges:        make([]Edge, 0, len(doc.Edges)),
		InitialInput: initialInput,
	}
	for _, n := range doc.Nodes {
		data := make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			data[k] = v
		}
		req.Nodes = append(req.Nodes, Node{ID: n.ID, Type: n.Kind.String(), Data: data})
	}
	for _, e := range doc.Edges {
		req.Edges = append(req.Edges, Edge{Source: e.Source, Target: e.Target})
	}
	if req.InitialInput == "" {
		req.InitialInput = seedPrompt(doc)
	}
	return req
}

func seedPrompt(doc *domain.GraphDocument) string {
	for _, n := range doc.Nodes {
		if n.Kind == domain.KindInput {
			return n.Data[domain.FieldInitialPrompt]
		}
	}
	return ""
}
