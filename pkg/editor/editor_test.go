package editor

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/aretw0/botcraft/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() graph.IDFunc {
	i := 0
	return func() string {
		i++
		return fmt.Sprintf("n%d", i)
	}
}

func newTestEditor(opts ...Option) *Editor {
	opts = append([]Option{
		WithGraphOptions(graph.WithIDFunc(seqIDs())),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}, opts...)
	return New(nil, opts...)
}

func add(t *testing.T, e *Editor, kind domain.NodeKind) string {
	t.Helper()
	n, err := e.AddNodeFromPalette(kind)
	require.NoError(t, err)
	return n.ID
}

func TestAddNodeFromPalette(t *testing.T) {
	e := newTestEditor()

	for _, entry := range Palette() {
		n, err := e.AddNodeFromPalette(entry.Kind)
		require.NoError(t, err)

		assert.Equal(t, entry.Kind, n.Kind)
		assert.Equal(t, entry.Label, n.Label(), "default label matches palette")
		assert.GreaterOrEqual(t, n.Position.X, 100.0)
		assert.Less(t, n.Position.X, 400.0)
		assert.GreaterOrEqual(t, n.Position.Y, 100.0)
		assert.Less(t, n.Position.Y, 400.0)
	}
	assert.Equal(t, len(Palette()), e.Graph().Len())
	assert.Equal(t, NoSelection, e.Presentation().State(), "adding does not select")
}

func TestAddNodeFromPalette_Defaults(t *testing.T) {
	e := newTestEditor()

	agent := add(t, e, domain.KindAgent)
	input := add(t, e, domain.KindInput)
	email := add(t, e, domain.KindEmailAction)

	n, _ := e.Graph().Node(agent)
	v, _ := n.Config.Get(domain.FieldSystemInstruction)
	assert.Equal(t, "You are a helpful assistant.", v)

	n, _ = e.Graph().Node(input)
	v, _ = n.Config.Get(domain.FieldInitialPrompt)
	assert.Equal(t, "Start here...", v)

	n, _ = e.Graph().Node(email)
	v, _ = n.Config.Get(domain.FieldReceiverEmail)
	assert.Equal(t, "", v)
}

func TestSelection(t *testing.T) {
	e := newTestEditor()
	a := add(t, e, domain.KindTool)
	b := add(t, e, domain.KindAgent)

	require.NoError(t, e.SelectNode(a))
	id, ok := e.Presentation().Selected()
	assert.True(t, ok)
	assert.Equal(t, a, id)

	// selecting another node moves the selection
	require.NoError(t, e.SelectNode(b))
	n, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, b, n.ID)

	assert.ErrorIs(t, e.SelectNode("ghost"), domain.ErrUnknownNode)
	id, _ = e.Presentation().Selected()
	assert.Equal(t, b, id, "failed select keeps the previous selection")

	e.ClearSelection()
	assert.Equal(t, NoSelection, e.Presentation().State())
	_, ok = e.Selected()
	assert.False(t, ok)
}

func TestUpdateSelectedNodeField(t *testing.T) {
	e := newTestEditor()
	agent := add(t, e, domain.KindAgent)

	assert.ErrorIs(t, e.UpdateSelectedNodeField(domain.FieldLabel, "x"), domain.ErrNoSelection)

	require.NoError(t, e.SelectNode(agent))
	require.NoError(t, e.UpdateSelectedNodeField(domain.FieldSystemInstruction, "Be concise."))

	n, _ := e.Selected()
	v, _ := n.Config.Get(domain.FieldSystemInstruction)
	assert.Equal(t, "Be concise.", v)
	assert.Equal(t, 1, e.Graph().Len())
	assert.Empty(t, e.Graph().Edges())
}

func TestUpdateNodeField_Rejections(t *testing.T) {
	e := newTestEditor()
	email := add(t, e, domain.KindEmailAction)
	agent := add(t, e, domain.KindAgent)
	before := e.Snapshot()

	err := e.UpdateNodeField(email, domain.FieldSystemInstruction, "x")
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	err = e.UpdateNodeField(email, domain.FieldReceiverEmail, "not an email")
	var ve *schema.ValidationError
	assert.ErrorAs(t, err, &ve)

	err = e.UpdateNodeField(agent, domain.FieldPromptTemplate, "{topic}")
	assert.ErrorAs(t, err, &ve)

	err = e.UpdateNodeField("ghost", domain.FieldLabel, "x")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)

	assert.Equal(t, before, e.Snapshot())

	// clearing a field mid-edit is allowed
	require.NoError(t, e.UpdateNodeField(email, domain.FieldLabel, ""))
}

func TestDeleteSelected(t *testing.T) {
	e := newTestEditor()
	a := add(t, e, domain.KindInput)
	b := add(t, e, domain.KindAgent)
	c := add(t, e, domain.KindEmailAction)
	require.NoError(t, e.Connect(a, b))
	require.NoError(t, e.Connect(b, c))

	assert.False(t, e.DeleteSelected(), "nothing selected")

	require.NoError(t, e.SelectNode(b))
	assert.True(t, e.DeleteSelected())

	assert.Equal(t, NoSelection, e.Presentation().State())
	assert.False(t, e.Graph().Has(b))
	assert.Empty(t, e.Graph().Edges())
	assert.Equal(t, 2, e.Graph().Len())
}

func TestDeleteNode_ClearsMatchingSelectionOnly(t *testing.T) {
	e := newTestEditor()
	a := add(t, e, domain.KindTool)
	b := add(t, e, domain.KindTool)
	require.NoError(t, e.SelectNode(a))

	assert.True(t, e.DeleteNode(b))
	id, _ := e.Presentation().Selected()
	assert.Equal(t, a, id)

	assert.True(t, e.DeleteNode(a))
	assert.Equal(t, NoSelection, e.Presentation().State())
	assert.False(t, e.DeleteNode(a))
}

func TestConnect_RejectCycles(t *testing.T) {
	e := newTestEditor()
	a := add(t, e, domain.KindInput)
	b := add(t, e, domain.KindAgent)
	c := add(t, e, domain.KindEmailAction)

	require.NoError(t, e.Connect(a, b))
	require.NoError(t, e.Connect(b, c))
	require.NoError(t, e.Connect(a, b), "duplicate connect is a no-op")
	assert.Len(t, e.Graph().Edges(), 2)

	assert.ErrorIs(t, e.Connect(a, a), domain.ErrSelfLoop)
	assert.ErrorIs(t, e.Connect(c, a), domain.ErrCycle)
	assert.ErrorIs(t, e.Connect(a, "ghost"), domain.ErrUnknownNode)
	assert.Len(t, e.Graph().Edges(), 2)
}

func TestConnect_AllowCycles(t *testing.T) {
	e := newTestEditor(WithCyclePolicy(AllowCycles))
	a := add(t, e, domain.KindAgent)
	b := add(t, e, domain.KindAgent)

	require.NoError(t, e.Connect(a, b))
	require.NoError(t, e.Connect(b, a))
	require.NoError(t, e.Connect(a, a))
	assert.Len(t, e.Graph().Edges(), 3)
}

func TestDisconnect(t *testing.T) {
	e := newTestEditor()
	a := add(t, e, domain.KindInput)
	b := add(t, e, domain.KindAgent)
	require.NoError(t, e.Connect(a, b))

	assert.True(t, e.Disconnect(a, b))
	assert.False(t, e.Disconnect(a, b))
	assert.Equal(t, 2, e.Graph().Len())
}

func TestHooks(t *testing.T) {
	var events []domain.EventType
	hooks := domain.EditorHooks{
		OnNodeAdded:   func(ev *domain.NodeEvent) { events = append(events, ev.Type) },
		OnNodeUpdated: func(ev *domain.NodeEvent) { events = append(events, ev.Type) },
		OnNodeRemoved: func(ev *domain.NodeEvent) { events = append(events, ev.Type) },
		OnEdgeAdded:   func(ev *domain.EdgeEvent) { events = append(events, ev.Type) },
		OnEdgeRemoved: func(ev *domain.EdgeEvent) { events = append(events, ev.Type) },
	}
	e := newTestEditor(WithHooks(hooks))

	a := add(t, e, domain.KindInput)
	b := add(t, e, domain.KindAgent)
	require.NoError(t, e.Connect(a, b))
	require.NoError(t, e.Connect(a, b)) // no-op, no event
	require.NoError(t, e.UpdateNodeField(b, domain.FieldLabel, "Writer"))
	_ = e.UpdateNodeField(b, "bogus", "x") // rejected, no event
	e.DeleteNode(a)

	assert.Equal(t, []domain.EventType{
		domain.EventNodeAdded,
		domain.EventNodeAdded,
		domain.EventEdgeAdded,
		domain.EventNodeUpdated,
		domain.EventEdgeRemoved,
		domain.EventNodeRemoved,
	}, events)
}

func TestNewStarter(t *testing.T) {
	e := NewStarter(WithGraphOptions(graph.WithIDFunc(seqIDs())))

	nodes := e.Graph().Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, domain.KindInput, nodes[0].Kind)
	assert.Equal(t, "Start Node", nodes[0].Label())
	assert.Equal(t, domain.KindAgent, nodes[1].Kind)
	assert.Equal(t, "Researcher Agent", nodes[1].Label())
	assert.Equal(t, []domain.Edge{{Source: nodes[0].ID, Target: nodes[1].ID}}, e.Graph().Edges())
	assert.Equal(t, NoSelection, e.Presentation().State())
}

func TestRestore(t *testing.T) {
	orig := NewStarter()
	doc := orig.Snapshot()
	first := doc.Nodes[0].ID

	e, err := Restore(doc, first)
	require.NoError(t, err)
	id, ok := e.Presentation().Selected()
	assert.True(t, ok)
	assert.Equal(t, first, id)
	assert.Equal(t, doc, e.Snapshot())

	e, err = Restore(doc, "deleted-long-ago")
	require.NoError(t, err)
	assert.Equal(t, NoSelection, e.Presentation().State())

	_, err = Restore(&domain.GraphDocument{Nodes: []domain.NodeRecord{{ID: "x", Kind: "bogus"}}}, "")
	assert.ErrorIs(t, err, graph.ErrStructural)
}
