package graph

import "errors"

// ErrStructural is the sentinel wrapped by every StructuralError.
var ErrStructural = errors.New("structural error")

// Structural error kinds.
const (
	KindDuplicateID  = "duplicate_id"
	KindDanglingEdge = "dangling_edge"
	KindCycle        = "cycle"
	KindSelfLoop     = "self_reference"
	KindInvalidNode  = "invalid_node"
)

// StructuralError reports a graph that breaks an invariant.
type StructuralError struct {
	Kind string
	Msg  string
}

func (e *StructuralError) Error() string {
	return "graph " + e.Kind + ": " + e.Msg
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}
