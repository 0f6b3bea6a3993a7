package http

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/aretw0/botcraft"
	mermaid "github.com/aretw0/botcraft/internal/presentation/graph"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/schema"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/go-chi/chi/v5"
)

type paletteEntry struct {
	editor.PaletteEntry
	Schema schema.Schema `json:"schema"`
}

type createSessionRequest struct {
	Starter  *bool             `json:"starter"`
	Workflow *workflow.Request `json:"workflow"`
}

type addNodeRequest struct {
	Kind     string            `json:"kind"`
	Position *domain.Position  `json:"position"`
	Data     map[string]string `json:"data"`
}

type updateNodeRequest struct {
	Key      string           `json:"key"`
	Value    *string          `json:"value"`
	Position *domain.Position `json:"position"`
}

type selectionRequest struct {
	NodeID *string `json:"node_id"`
}

type runRequest struct {
	InitialInput string `json:"initial_input"`
}

// GetPalette handles GET /palette.
func (s *Server) GetPalette(w http.ResponseWriter, r *http.Request) {
	entries := editor.Palette()
	out := make([]paletteEntry, len(entries))
	for i, e := range entries {
		out[i] = paletteEntry{PaletteEntry: e, Schema: schema.For(e.Kind)}
	}
	writeJSON(w, http.StatusOK, out)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "List sessions", err)
		return
	}
	slices.Sort(ids)
	writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles POST /sessions. The body is optional; by default
// the session opens on the starter workflow. A workflow in the body is imported instead.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := decodeBody(r, &body, true); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		sess *domain.Session
		err  error
	)
	if body.Workflow != nil {
		g, perr := workflow.Parse(*body.Workflow)
		if perr != nil {
			s.fail(w, "Import workflow", perr)
			return
		}
		sess, err = s.Sessions.CreateFrom(r.Context(), g.Document())
	} else {
		sess, err = s.Sessions.Create(r.Context(), body.Starter == nil || *body.Starter)
	}
	if err != nil {
		s.fail(w, "Create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Load session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "Delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /sessions/{id}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Load graph", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Graph)
}

// edit runs fn against the session named in the URL.
func (s *Server) edit(ctx context.Context, r *http.Request, fn func(*editor.Editor) error) error {
	_, _, err := s.Sessions.Edit(ctx, chi.URLParam(r, "id"), fn)
	return err
}

// AddNode handles POST /sessions/{id}/nodes.
// Without a position the node lands at a random spot, as when picked from the palette.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body addNodeRequest
	if err := decodeBody(r, &body, false); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	kind, err := domain.ParseKind(body.Kind)
	if err != nil {
		s.fail(w, "Add node", err)
		return
	}

	var added domain.NodeRecord
	err = s.edit(r.Context(), r, func(e *editor.Editor) error {
		var (
			n   domain.Node
			err error
		)
		if body.Position != nil {
			n, err = e.AddNode(kind, nil, *body.Position)
		} else {
			n, err = e.AddNodeFromPalette(kind)
		}
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(body.Data))
		for k := range body.Data {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if err := e.UpdateNodeField(n.ID, k, body.Data[k]); err != nil {
				return err
			}
		}
		n, _ = e.Graph().Node(n.ID)
		added = n.Record()
		return nil
	})
	if err != nil {
		s.fail(w, "Add node", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdateNode handles PATCH /sessions/{id}/nodes/{nodeID}: one field edit, a move, or both.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var body updateNodeRequest
	if err := decodeBody(r, &body, false); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Key == "" && body.Position == nil {
		http.Error(w, "Nothing to update: expected key/value or position", http.StatusBadRequest)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")

	var updated domain.NodeRecord
	err := s.edit(r.Context(), r, func(e *editor.Editor) error {
		if body.Key != "" {
			value := ""
			if body.Value != nil {
				value = *body.Value
			}
			if err := e.UpdateNodeField(nodeID, body.Key, value); err != nil {
				return err
			}
		}
		if body.Position != nil {
			if err := e.MoveNode(nodeID, *body.Position); err != nil {
				return err
			}
		}
		n, _ := e.Graph().Node(nodeID)
		updated = n.Record()
		return nil
	})
	if err != nil {
		s.fail(w, "Update node", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteNode handles DELETE /sessions/{id}/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	err := s.edit(r.Context(), r, func(e *editor.Editor) error {
		if !e.DeleteNode(nodeID) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownNode, nodeID)
		}
		return nil
	})
	if err != nil {
		s.fail(w, "Delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles POST /sessions/{id}/edges.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var edge domain.Edge
	if err := decodeBody(r, &edge, false); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	err := s.edit(r.Context(), r, func(e *editor.Editor) error {
		return e.Connect(edge.Source, edge.Target)
	})
	if err != nil {
		s.fail(w, "Connect", err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// Disconnect handles DELETE /sessions/{id}/edges.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	var edge domain.Edge
	if err := decodeBody(r, &edge, false); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	err := s.edit(r.Context(), r, func(e *editor.Editor) error {
		if !e.Disconnect(edge.Source, edge.Target) {
			return fmt.Errorf("%w: no edge %s -> %s", domain.ErrUnknownNode, edge.Source, edge.Target)
		}
		return nil
	})
	if err != nil {
		s.fail(w, "Disconnect", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Select handles PUT /sessions/{id}/selection. A null node_id clears the selection.
func (s *Server) Select(w http.ResponseWriter, r *http.Request) {
	var body selectionRequest
	if err := decodeBody(r, &body, false); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	err := s.edit(r.Context(), r, func(e *editor.Editor) error {
		if body.NodeID == nil || *body.NodeID == "" {
			e.ClearSelection()
			return nil
		}
		return e.SelectNode(*body.NodeID)
	})
	if err != nil {
		s.fail(w, "Select", err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// GetWorkflow handles GET /sessions/{id}/workflow.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	e, err := s.Sessions.Editor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Serialize workflow", err)
		return
	}
	writeJSON(w, http.StatusOK, workflow.Serialize(e.Graph(), r.URL.Query().Get("initial_input")))
}

// GetPlan handles GET /sessions/{id}/plan.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	e, err := s.Sessions.Editor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Plan", err)
		return
	}
	plan, err := workflow.BuildPlan(e.Graph())
	if err != nil {
		http.Error(w, fmt.Sprintf("Plan: %v", err), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// GetMermaid handles GET /sessions/{id}/mermaid.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	e, err := s.Sessions.Editor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Mermaid", err)
		return
	}
	overlay := &mermaid.GraphOverlay{}
	overlay.Selected, _ = e.Presentation().Selected()
	for _, n := range e.Graph().Nodes() {
		if schema.ValidateConfig(n.Config) != nil {
			overlay.Invalid = append(overlay.Invalid, n.ID)
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, mermaid.GenerateMermaid(e.Snapshot(), overlay))
}

// Run handles POST /sessions/{id}/run. Backend failures are part of the
// returned Result; only a missing runner, a busy runner or an unrunnable graph
// change the status code.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "Run: no execution backend configured", http.StatusServiceUnavailable)
		return
	}
	var body runRequest
	if err := decodeBody(r, &body, true); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	e, err := s.Sessions.Editor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Run", err)
		return
	}
	if err := workflow.Check(e.Graph()); err != nil {
		http.Error(w, fmt.Sprintf("Run: workflow is not runnable: %v", err), http.StatusUnprocessableEntity)
		return
	}

	res := botcraft.Submit(r.Context(), s.Runner, e.Graph(), body.InitialInput)
	if res.Error == domain.ErrRunInFlight.Error() {
		http.Error(w, "Run: "+res.Error, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if _, err := s.Sessions.Load(r.Context(), sessionID); err != nil {
		s.fail(w, "Subscribe", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		watch = strings.Split(raw, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !diffMatches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
