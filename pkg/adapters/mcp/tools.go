package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/botcraft"
	mermaid "github.com/aretw0/botcraft/internal/presentation/graph"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
)

// GraphResult is returned by tools that change or read the whole graph.
type GraphResult struct {
	SessionID string               `json:"session_id" jsonschema_description:"Session that was read or edited"`
	Graph     domain.GraphDocument `json:"graph" jsonschema_description:"Nodes and edges after the call"`
	Selected  string               `json:"selected,omitempty" jsonschema_description:"Selected node, if any"`
}

// NodeResult is returned by tools that touch a single node.
type NodeResult struct {
	SessionID string            `json:"session_id"`
	Node      domain.NodeRecord `json:"node"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type createArgs struct {
	Empty bool `json:"empty"`
}

type addNodeArgs struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
}

type updateNodeArgs struct {
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type nodeArgs struct {
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id"`
}

type edgeArgs struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
}

type runArgs struct {
	SessionID    string `json:"session_id"`
	InitialInput string `json:"initial_input"`
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Description("Session to act on (optional, defaults to the server session)"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Start a new editing session with the starter workflow (or an empty canvas)."),
		mcp.WithBoolean("empty", mcp.Description("Start from an empty canvas")),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.handleCreateSession))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the nodes, edges and selection of a session."),
		sessionParam(),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.handleGetGraph))

	kinds := make([]string, 0, len(domain.Kinds()))
	for _, k := range domain.Kinds() {
		kinds = append(kinds, k.String())
	}
	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Place a node of the given kind with its default configuration."),
		sessionParam(),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(kinds...), mcp.Description("Node kind")),
		mcp.WithString("label", mcp.Description("Display label (optional)")),
		mcp.WithOutputSchema[NodeResult](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("update_node",
		mcp.WithDescription("Set one configuration field of a node. The value is validated against the node kind."),
		sessionParam(),
		mcp.WithString("node_id", mcp.Required()),
		mcp.WithString("key", mcp.Required(), mcp.Description("Field name, e.g. label, systemInstruction, promptTemplate, receiverEmail")),
		mcp.WithString("value", mcp.Required()),
		mcp.WithOutputSchema[NodeResult](),
	), mcp.NewStructuredToolHandler(s.handleUpdateNode))

	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Remove a node and every edge touching it."),
		sessionParam(),
		mcp.WithString("node_id", mcp.Required()),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.handleDeleteNode))

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Add a directed edge. Self-loops and edges that would close a cycle are rejected."),
		sessionParam(),
		mcp.WithString("source", mcp.Required()),
		mcp.WithString("target", mcp.Required()),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a directed edge."),
		sessionParam(),
		mcp.WithString("source", mcp.Required()),
		mcp.WithString("target", mcp.Required()),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.handleDisconnect))

	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Serialize the graph into the execution request sent to the backend."),
		sessionParam(),
		mcp.WithString("initial_input", mcp.Description("Overrides the start node prompt")),
	), s.handleGetWorkflow)

	s.mcpServer.AddTool(mcp.NewTool("get_mermaid",
		mcp.WithDescription("Render the graph as a Mermaid flowchart."),
		sessionParam(),
	), s.handleGetMermaid)

	s.mcpServer.AddTool(mcp.NewTool("run_workflow",
		mcp.WithDescription("Submit the graph to the execution backend and wait for the result."),
		sessionParam(),
		mcp.WithString("initial_input", mcp.Description("Overrides the start node prompt")),
		mcp.WithOutputSchema[workflow.Result](),
	), mcp.NewStructuredToolHandler(s.handleRun))
}

func (s *Server) handleCreateSession(ctx context.Context, _ mcp.CallToolRequest, args createArgs) (GraphResult, error) {
	sess, err := s.sessions.Create(ctx, !args.Empty)
	if err != nil {
		return GraphResult{}, err
	}
	return graphResult(sess), nil
}

func (s *Server) handleGetGraph(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (GraphResult, error) {
	id, err := s.resolve(ctx, args.SessionID)
	if err != nil {
		return GraphResult{}, err
	}
	sess, err := s.sessions.Load(ctx, id)
	if err != nil {
		return GraphResult{}, err
	}
	return graphResult(sess), nil
}

func (s *Server) handleAddNode(ctx context.Context, _ mcp.CallToolRequest, args addNodeArgs) (NodeResult, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return NodeResult{}, err
	}
	id, err := s.resolve(ctx, args.SessionID)
	if err != nil {
		return NodeResult{}, err
	}
	var rec domain.NodeRecord
	_, _, err = s.sessions.Edit(ctx, id, func(e *editor.Editor) error {
		n, err := e.AddNodeFromPalette(kind)
		if err != nil {
			return err
		}
		if args.Label != "" {
			if err := e.UpdateNodeField(n.ID, domain.FieldLabel, args.Label); err != nil {
				return err
			}
			n, _ = e.Graph().Node(n.ID)
		}
		rec = n.Record()
		return nil
	})
	if err != nil {
		return NodeResult{}, err
	}
	return NodeResult{SessionID: id, Node: rec}, nil
}

func (s *Server) handleUpdateNode(ctx context.Context, _ mcp.CallToolRequest, args updateNodeArgs) (NodeResult, error) {
	id, err := s.resolve(ctx, args.SessionID)
	if err != nil {
		return NodeResult{}, err
	}
	var rec domain.NodeRecord
	_, _, err = s.sessions.Edit(ctx, id, func(e *editor.Editor) error {
		if err := e.UpdateNodeField(args.NodeID, args.Key, args.Value); err != nil {
			return err
		}
		n, _ := e.Graph().Node(args.NodeID)
		rec = n.Record()
		return nil
	})
	if err != nil {
		return NodeResult{}, err
	}
	return NodeResult{SessionID: id, Node: rec}, nil
}

// editGraph applies fn and returns the resulting graph.
func (s *Server) editGraph(ctx context.Context, sessionID string, fn func(*editor.Editor) error) (GraphResult, error) {
	id, err := s.resolve(ctx, sessionID)
	if err != nil {
		return GraphResult{}, err
	}
	sess, _, err := s.sessions.Edit(ctx, id, fn)
	if err != nil {
		return GraphResult{}, err
	}
	return graphResult(sess), nil
}

func (s *Server) handleDeleteNode(ctx context.Context, _ mcp.CallToolRequest, args nodeArgs) (GraphResult, error) {
	return s.editGraph(ctx, args.SessionID, func(e *editor.Editor) error {
		if !e.DeleteNode(args.NodeID) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownNode, args.NodeID)
		}
		return nil
	})
}

func (s *Server) handleConnect(ctx context.Context, _ mcp.CallToolRequest, args edgeArgs) (GraphResult, error) {
	return s.editGraph(ctx, args.SessionID, func(e *editor.Editor) error {
		return e.Connect(args.Source, args.Target)
	})
}

func (s *Server) handleDisconnect(ctx context.Context, _ mcp.CallToolRequest, args edgeArgs) (GraphResult, error) {
	return s.editGraph(ctx, args.SessionID, func(e *editor.Editor) error {
		if !e.Disconnect(args.Source, args.Target) {
			return fmt.Errorf("no edge %s -> %s", args.Source, args.Target)
		}
		return nil
	})
}

func (s *Server) editorFor(ctx context.Context, request mcp.CallToolRequest) (*editor.Editor, error) {
	id, err := s.resolve(ctx, request.GetString("session_id", ""))
	if err != nil {
		return nil, err
	}
	return s.sessions.Editor(ctx, id)
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := s.editorFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load session: %v", err)), nil
	}
	body, err := workflow.Serialize(e.Graph(), request.GetString("initial_input", "")).Marshal()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("serialize: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleGetMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := s.editorFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load session: %v", err)), nil
	}
	overlay := &mermaid.GraphOverlay{}
	overlay.Selected, _ = e.Presentation().Selected()
	return mcp.NewToolResultText(mermaid.GenerateMermaid(e.Snapshot(), overlay)), nil
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args runArgs) (workflow.Result, error) {
	if s.runner == nil {
		return workflow.Result{}, errors.New("no execution backend configured")
	}
	id, err := s.resolve(ctx, args.SessionID)
	if err != nil {
		return workflow.Result{}, err
	}
	e, err := s.sessions.Editor(ctx, id)
	if err != nil {
		return workflow.Result{}, err
	}
	res := botcraft.Submit(ctx, s.runner, e.Graph(), args.InitialInput)
	if res.Failed() {
		s.logger.Warn("MCP run failed", "session_id", id, "err", res.Error)
	}
	return res, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph",
		mcp.WithResourceDescription("Nodes and edges of the default session"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return s.readGraph(ctx, "", request.Params.URI)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(SessionGraphTemplate, "Session Graph",
		mcp.WithTemplateDescription("Nodes and edges of a session"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		id := strings.TrimSuffix(strings.TrimPrefix(uri, "botcraft://sessions/"), "/graph")
		if id == "" || id == uri {
			return nil, fmt.Errorf("invalid session graph uri %q", uri)
		}
		return s.readGraph(ctx, id, uri)
	})
}

func (s *Server) readGraph(ctx context.Context, sessionID, uri string) ([]mcp.ResourceContents, error) {
	res, err := s.handleGetGraph(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
