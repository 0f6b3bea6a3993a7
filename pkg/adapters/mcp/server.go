package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/botcraft"
	"github.com/aretw0/botcraft/internal/logging"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/session"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

const (
	// GraphURI names the default session's graph.
	GraphURI = "botcraft://graph"
	// SessionGraphTemplate names any session's graph.
	SessionGraphTemplate = "botcraft://sessions/{id}/graph"
)

// Server exposes editing sessions as an MCP Server.
type Server struct {
	sessions  *session.Manager
	runner    botcraft.Runner
	mcpServer *server.MCPServer
	logger    *slog.Logger

	mu        sync.Mutex
	defaultID string
}

// Option configures a Server.
type Option func(*Server)

// WithRunner enables the run_workflow tool.
func WithRunner(r botcraft.Runner) Option {
	return func(s *Server) {
		s.runner = r
	}
}

// WithSession makes id the default session instead of creating one on first use.
func WithSession(id string) Option {
	return func(s *Server) {
		s.defaultID = id
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
		mcpServer: server.NewMCPServer("botcraft-mcp", botcraft.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr: addr,
		Handler: cors.New(cors.Options{
			AllowOriginFunc: func(string) bool { return true },
			AllowedMethods:  []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:  []string{"*"},
		}).Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// resolve returns id, or the default session, creating it with the starter
// workflow on first use.
func (s *Server) resolve(ctx context.Context, id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.defaultID != "" {
		return s.defaultID, nil
	}
	sess, err := s.sessions.Create(ctx, true)
	if err != nil {
		return "", err
	}
	s.defaultID = sess.ID
	s.logger.Info("MCP default session created", "session_id", sess.ID)
	return sess.ID, nil
}

func graphResult(sess *domain.Session) GraphResult {
	return GraphResult{SessionID: sess.ID, Graph: sess.Graph, Selected: sess.Selected}
}
