package domain

// Position is the canvas placement of a node.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a single step of a workflow graph.
// The Config variant always matches Kind.
type Node struct {
	ID       string
	Kind     NodeKind
	Position Position
	Config   Config
}

// Label returns the display label of the node.
func (n Node) Label() string {
	if n.Config == nil {
		return ""
	}
	v, _ := n.Config.Get(FieldLabel)
	return v
}

// Clone returns a copy that shares no mutable state with n.
func (n Node) Clone() Node {
	if n.Config != nil {
		n.Config = n.Config.Clone()
	}
	return n
}

// Edge is a directed connection from Source to Target.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// NodeRecord is the serializable form of a Node.
type NodeRecord struct {
	ID       string            `json:"id" yaml:"id"`
	Kind     NodeKind          `json:"kind" yaml:"kind"`
	Position Position          `json:"position" yaml:"position"`
	Data     map[string]string `json:"data" yaml:"data"`
}

// Record converts the node into its serializable form.
func (n Node) Record() NodeRecord {
	return NodeRecord{ID: n.ID, Kind: n.Kind, Position: n.Position, Data: Fields(n.Config)}
}

// GraphDocument is a serializable snapshot of a workflow graph.
// Nodes keep their insertion order.
type GraphDocument struct {
	Nodes []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges []Edge       `json:"edges" yaml:"edges"`
}

// Clone returns a deep copy of the document.
func (d GraphDocument) Clone() GraphDocument {
	out := GraphDocument{
		Nodes: make([]NodeRecord, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	for i, rec := range d.Nodes {
		data := make(map[string]string, len(rec.Data))
		for k, v := range rec.Data {
			data[k] = v
		}
		rec.Data = data
		out.Nodes[i] = rec
	}
	copy(out.Edges, d.Edges)
	return out
}
