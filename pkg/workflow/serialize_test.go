package workflow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/goccy/go-json"
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

// pingAgent builds Input("ping") -> Agent("You are helpful.").
func pingAgent(t *testing.T) (*graph.Graph, domain.Node, domain.Node) {
	t.Helper()
	g := graph.New(graph.WithIDFunc(seqIDs()))
	in, err := g.AddNode(domain.KindInput, &domain.InputConfig{Label: "Start", InitialPrompt: "ping"}, domain.Position{X: 1, Y: 2})
	require.NoError(t, err)
	agent, err := g.AddNode(domain.KindAgent, &domain.AgentConfig{Label: "Agent", SystemInstruction: "You are helpful."}, domain.Position{X: 3, Y: 4})
	require.NoError(t, err)
	_, err = g.AddEdge(in.ID, agent.ID)
	require.NoError(t, err)
	return g, in, agent
}

func TestSerialize_InputToAgent(t *testing.T) {
	g, in, agent := pingAgent(t)

	req := Serialize(g, "")

	require.Len(t, req.Nodes, 2)
	require.Len(t, req.Edges, 1)
	assert.Equal(t, Edge{Source: in.ID, Target: agent.ID}, req.Edges[0])
	assert.Equal(t, "input", req.Nodes[0].Type)
	assert.Equal(t, "agent", req.Nodes[1].Type)
	assert.Equal(t, "You are helpful.", req.Nodes[1].Data[domain.FieldSystemInstruction])
}

func TestSerialize_DeletedAgentDropsEdge(t *testing.T) {
	g, _, agent := pingAgent(t)
	require.True(t, g.RemoveNode(agent.ID))

	req := Serialize(g, "")

	assert.Len(t, req.Nodes, 1)
	assert.Len(t, req.Edges, 0)
}

func TestSerialize_DataMatchesKindAndHasNoPosition(t *testing.T) {
	g := graph.New()
	for _, k := range domain.Kinds() {
		_, err := g.AddNode(k, nil, domain.Position{X: 42, Y: 42})
		require.NoError(t, err)
	}

	req := Serialize(g, "")
	body, err := req.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(body), "position")

	for _, n := range req.Nodes {
		kind := domain.NodeKind(n.Type)
		cfg, err := domain.NewConfig(kind)
		require.NoError(t, err)

		var keys []string
		for k := range n.Data {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, cfg.Keys(), keys, "data keys for %s", kind)
	}
}

func TestSerialize_InitialInput(t *testing.T) {
	g, _, _ := pingAgent(t)

	assert.Equal(t, "ping", Serialize(g, "").InitialInput, "derived from the input node")
	assert.Equal(t, "override", Serialize(g, "override").InitialInput, "explicit input wins")

	empty := graph.New()
	_, _ = empty.AddNode(domain.KindAgent, nil, domain.Position{})
	assert.Equal(t, "", Serialize(empty, "").InitialInput)
}

func TestSerialize_IsSnapshot(t *testing.T) {
	g, in, _ := pingAgent(t)
	req := Serialize(g, "")

	require.NoError(t, g.UpdateNodeConfig(in.ID, domain.FieldInitialPrompt, "later edit"))
	g.RemoveNode(in.ID)

	assert.Len(t, req.Nodes, 2)
	assert.Equal(t, "ping", req.Nodes[0].Data[domain.FieldInitialPrompt])
}

func TestRequest_MarshalWireShape(t *testing.T) {
	body, err := Request{}.Marshal()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Equal(t, []any{}, wire["nodes"])
	assert.Equal(t, []any{}, wire["edges"])
	assert.Equal(t, "", wire["initial_input"])

	g, _, _ := pingAgent(t)
	body, err = Serialize(g, "").Marshal()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), `{"nodes":[{"id":"n1","type":"input","data":{`))

	back, err := UnmarshalRequest(body)
	require.NoError(t, err)
	assert.Equal(t, Serialize(g, ""), back)
}

func TestRequest_Retag(t *testing.T) {
	g, _, _ := pingAgent(t)
	req := Serialize(g, "")

	tagged := req.Retag(ReferenceTypes)

	assert.Equal(t, "input", tagged.Nodes[0].Type)
	assert.Equal(t, "llm", tagged.Nodes[1].Type)
	assert.Equal(t, "agent", req.Nodes[1].Type)
	assert.Equal(t, req.Edges, tagged.Edges)
	assert.Equal(t, req, req.Retag(nil))
}
