package editor

// SelectionState is the state of the canvas selection.
type SelectionState int

const (
	NoSelection SelectionState = iota
	NodeSelected
)

func (s SelectionState) String() string {
	if s == NodeSelected {
		return "selected"
	}
	return "none"
}

// Presentation is view state that lives beside the graph.
// It references nodes by id only.
type Presentation struct {
	selected string
}

// State returns the current selection state.
func (p Presentation) State() SelectionState {
	if p.selected == "" {
		return NoSelection
	}
	return NodeSelected
}

// Selected returns the selected node id, if any.
func (p Presentation) Selected() (string, bool) {
	return p.selected, p.selected != ""
}

func (p *Presentation) selectNode(id string) { p.selected = id }

func (p *Presentation) clear() { p.selected = "" }
