package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/aretw0/botcraft"
	"github.com/aretw0/botcraft/internal/logging"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/aretw0/botcraft/pkg/schema"
	"github.com/aretw0/botcraft/pkg/session"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/cors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server serves the editor API over a session manager.
type Server struct {
	Sessions *session.Manager
	Runner   botcraft.Runner
	Streams  *StreamManager

	origins []string
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRunner sets the runner used by POST /sessions/{id}/run.
func WithRunner(r botcraft.Runner) Option {
	return func(s *Server) {
		s.Runner = r
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins restricts CORS. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer creates a Server and subscribes its stream manager to the
// manager's diffs.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		origins:  []string{"*"},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	sessions.OnChange(s.Streams.PublishDiff)
	return s
}

// NewHandler creates the HTTP handler for the editor API.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Handler()
}

// Handler builds the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	return s.cors().Handler(s.routes())
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/palette", s.GetPalette)

	r.Get("/sessions", s.ListSessions)
	r.Post("/sessions", s.CreateSession)
	r.Get("/sessions/{id}", s.GetSession)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/sessions/{id}/graph", s.GetGraph)
	r.Post("/sessions/{id}/nodes", s.AddNode)
	r.Patch("/sessions/{id}/nodes/{nodeID}", s.UpdateNode)
	r.Delete("/sessions/{id}/nodes/{nodeID}", s.DeleteNode)
	r.Post("/sessions/{id}/edges", s.Connect)
	r.Delete("/sessions/{id}/edges", s.Disconnect)
	r.Put("/sessions/{id}/selection", s.Select)
	r.Get("/sessions/{id}/workflow", s.GetWorkflow)
	r.Get("/sessions/{id}/plan", s.GetPlan)
	r.Get("/sessions/{id}/mermaid", s.GetMermaid)
	r.Post("/sessions/{id}/run", s.Run)

	r.Get("/events", s.SubscribeEvents)

	return r
}

func (s *Server) cors() *cors.Cors {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}
	if slices.Contains(s.origins, "*") {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		opts.AllowedOrigins = s.origins
	}
	return cors.New(opts)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "botcraft-http",
		"version":     botcraft.Version,
		"api_version": apiVersion,
	})
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched when optional.
func decodeBody(r *http.Request, v any, optional bool) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(data) == 0 && optional {
		return nil
	}
	return json.Unmarshal(data, v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *schema.ValidationError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSelfLoop), errors.Is(err, domain.ErrCycle), errors.Is(err, domain.ErrRunInFlight):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrNoSelection), errors.Is(err, graph.ErrStructural):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrEmptyWorkflow), errors.Is(err, workflow.ErrNoEntry):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, fmt.Sprintf("%s: %v", op, err), status)
}
