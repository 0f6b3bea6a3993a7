package workflow

import (
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/goccy/go-json"
)

// ReferenceTypes maps node kinds to the type names the reference execution
// backend dispatches on. Kinds it does not know are passed through there.
var ReferenceTypes = map[string]string{
	domain.KindAgent.String(): "llm",
	domain.KindTool.String():  "search",
}

// Node is the wire form of a graph node. Editor-only state such as the canvas
// position never appears here.
type Node struct {
	ID   string         `json:"id" yaml:"id"`
	Type string         `json:"type" yaml:"type"`
	Data map[string]any `json:"data" yaml:"data"`
}

// Edge is the wire form of a graph edge.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Request is the body posted to the execution endpoint.
type Request struct {
	Nodes        []Node `json:"nodes" yaml:"nodes"`
	Edges        []Edge `json:"edges" yaml:"edges"`
	InitialInput string `json:"initial_input" yaml:"initial_input"`
}

// Marshal encodes the request as JSON.
func (r Request) Marshal() ([]byte, error) {
	if r.Nodes == nil {
		r.Nodes = []Node{}
	}
	if r.Edges == nil {
		r.Edges = []Edge{}
	}
	return json.Marshal(r)
}

// Retag returns a copy of r with node types renamed through types.
// Types without an entry are kept.
func (r Request) Retag(types map[string]string) Request {
	if len(types) == 0 {
		return r
	}
	out := r
	out.Nodes = make([]Node, len(r.Nodes))
	for i, n := range r.Nodes {
		if t, ok := types[n.Type]; ok {
			n.Type = t
		}
		out.Nodes[i] = n
	}
	return out
}

// UnmarshalRequest decodes a JSON request body.
func UnmarshalRequest(data []byte) (Request, error) {
	var r Request
	err := json.Unmarshal(data, &r)
	return r, err
}
