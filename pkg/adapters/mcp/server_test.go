package mcp

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/botcraft/pkg/adapters/memory"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/session"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu  sync.Mutex
	got []workflow.Request
}

func (f *fakeRunner) Run(_ context.Context, req workflow.Request) workflow.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, req)
	return workflow.Result{Status: "success", Output: "done"}
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *session.Manager) {
	t.Helper()
	n := 0
	mgr := session.NewManager(memory.NewStore(), session.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("sess-%d", n)
	}))
	return NewServer(mgr, opts...), mgr
}

func callText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestDefaultSessionIsCreatedOnce(t *testing.T) {
	s, mgr := newTestServer(t)
	ctx := context.Background()

	first, err := s.handleGetGraph(ctx, mcp.CallToolRequest{}, sessionArgs{})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", first.SessionID)
	assert.Len(t, first.Graph.Nodes, 2)

	second, err := s.handleGetGraph(ctx, mcp.CallToolRequest{}, sessionArgs{})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1"}, ids)
}

func TestWithSession(t *testing.T) {
	s, mgr := newTestServer(t)
	ctx := context.Background()
	sess, err := mgr.Create(ctx, false)
	require.NoError(t, err)

	s = NewServer(mgr, WithSession(sess.ID))
	res, err := s.handleGetGraph(ctx, mcp.CallToolRequest{}, sessionArgs{})
	require.NoError(t, err)
	assert.Equal(t, sess.ID, res.SessionID)
	assert.Empty(t, res.Graph.Nodes)
}

func TestEditingTools(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	created, err := s.handleCreateSession(ctx, mcp.CallToolRequest{}, createArgs{Empty: true})
	require.NoError(t, err)
	id := created.SessionID

	in, err := s.handleAddNode(ctx, mcp.CallToolRequest{}, addNodeArgs{SessionID: id, Kind: "input", Label: "Ask"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindInput, in.Node.Kind)
	assert.Equal(t, "Ask", in.Node.Data[domain.FieldLabel])

	ag, err := s.handleAddNode(ctx, mcp.CallToolRequest{}, addNodeArgs{SessionID: id, Kind: "agent"})
	require.NoError(t, err)

	updated, err := s.handleUpdateNode(ctx, mcp.CallToolRequest{}, updateNodeArgs{
		SessionID: id, NodeID: ag.Node.ID, Key: domain.FieldSystemInstruction, Value: "Be brief.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", updated.Node.Data[domain.FieldSystemInstruction])

	g, err := s.handleConnect(ctx, mcp.CallToolRequest{}, edgeArgs{SessionID: id, Source: in.Node.ID, Target: ag.Node.ID})
	require.NoError(t, err)
	assert.Len(t, g.Graph.Edges, 1)

	t.Run("rejections leave the graph untouched", func(t *testing.T) {
		_, err := s.handleAddNode(ctx, mcp.CallToolRequest{}, addNodeArgs{SessionID: id, Kind: "robot"})
		assert.ErrorIs(t, err, domain.ErrUnknownKind)

		_, err = s.handleConnect(ctx, mcp.CallToolRequest{}, edgeArgs{SessionID: id, Source: ag.Node.ID, Target: in.Node.ID})
		assert.ErrorIs(t, err, domain.ErrCycle)

		_, err = s.handleUpdateNode(ctx, mcp.CallToolRequest{}, updateNodeArgs{SessionID: id, NodeID: in.Node.ID, Key: "color", Value: "red"})
		assert.ErrorIs(t, err, domain.ErrUnknownField)

		_, err = s.handleDeleteNode(ctx, mcp.CallToolRequest{}, nodeArgs{SessionID: id, NodeID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrUnknownNode)

		res, err := s.handleGetGraph(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: id})
		require.NoError(t, err)
		assert.Len(t, res.Graph.Nodes, 2)
		assert.Len(t, res.Graph.Edges, 1)
	})

	g, err = s.handleDisconnect(ctx, mcp.CallToolRequest{}, edgeArgs{SessionID: id, Source: in.Node.ID, Target: ag.Node.ID})
	require.NoError(t, err)
	assert.Empty(t, g.Graph.Edges)

	_, err = s.handleDisconnect(ctx, mcp.CallToolRequest{}, edgeArgs{SessionID: id, Source: in.Node.ID, Target: ag.Node.ID})
	assert.Error(t, err)

	g, err = s.handleDeleteNode(ctx, mcp.CallToolRequest{}, nodeArgs{SessionID: id, NodeID: ag.Node.ID})
	require.NoError(t, err)
	assert.Len(t, g.Graph.Nodes, 1)
}

func TestGetWorkflowAndMermaid(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"initial_input": "hello"}
	res, err := s.handleGetWorkflow(ctx, req)
	require.NoError(t, err)
	require.False(t, res.IsError)

	wf, err := workflow.UnmarshalRequest([]byte(callText(t, res)))
	require.NoError(t, err)
	assert.Len(t, wf.Nodes, 2)
	assert.Len(t, wf.Edges, 1)
	assert.Equal(t, "hello", wf.InitialInput)

	res, err = s.handleGetMermaid(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.Contains(t, callText(t, res), "graph LR")

	missing := mcp.CallToolRequest{}
	missing.Params.Arguments = map[string]any{"session_id": "nope"}
	res, err = s.handleGetMermaid(ctx, missing)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRunWorkflow(t *testing.T) {
	ctx := context.Background()

	t.Run("without runner", func(t *testing.T) {
		s, _ := newTestServer(t)
		_, err := s.handleRun(ctx, mcp.CallToolRequest{}, runArgs{})
		assert.Error(t, err)
	})

	t.Run("submits the default session", func(t *testing.T) {
		r := &fakeRunner{}
		s, _ := newTestServer(t, WithRunner(r))
		res, err := s.handleRun(ctx, mcp.CallToolRequest{}, runArgs{InitialInput: "news"})
		require.NoError(t, err)
		assert.Equal(t, "done", res.Output)
		require.Len(t, r.got, 1)
		assert.Equal(t, "news", r.got[0].InitialInput)
	})

	t.Run("empty canvas is not runnable", func(t *testing.T) {
		r := &fakeRunner{}
		s, mgr := newTestServer(t, WithRunner(r))
		sess, err := mgr.Create(ctx, false)
		require.NoError(t, err)
		res, err := s.handleRun(ctx, mcp.CallToolRequest{}, runArgs{SessionID: sess.ID})
		require.NoError(t, err)
		assert.True(t, res.Failed())
		assert.Empty(t, r.got)
	})
}

func TestProtocolRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	send := func(msg string) string {
		t.Helper()
		out := s.MCPServer().HandleMessage(ctx, json.RawMessage(msg))
		data, err := json.Marshal(out)
		require.NoError(t, err)
		return string(data)
	}

	send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`)

	list := send(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	for _, name := range []string{"create_session", "add_node", "update_node", "delete_node", "connect", "disconnect", "get_graph", "get_workflow", "get_mermaid", "run_workflow"} {
		assert.Contains(t, list, `"`+name+`"`)
	}

	call := send(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"add_node","arguments":{"kind":"tool","label":"Search"}}}`)
	assert.Contains(t, call, "Search")
	assert.NotContains(t, call, `"isError":true`)

	read := send(`{"jsonrpc":"2.0","id":4,"method":"resources/read","params":{"uri":"botcraft://graph"}}`)
	assert.Contains(t, read, "Search")

	read = send(`{"jsonrpc":"2.0","id":5,"method":"resources/read","params":{"uri":"botcraft://sessions/sess-1/graph"}}`)
	assert.Contains(t, read, "Researcher Agent")
}
