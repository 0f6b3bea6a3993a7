package botcraft

import (
	"context"
	"log/slog"

	"github.com/aretw0/botcraft/internal/logging"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/aretw0/botcraft/pkg/workflow"
)

// Runner executes a serialized workflow. *client.Client implements it.
type Runner interface {
	Run(ctx context.Context, req workflow.Request) workflow.Result
}

// Submit checks that g is runnable, serializes a snapshot of it and hands it to r.
// Like the runner itself it never returns an error: problems become Result.Error.
func Submit(ctx context.Context, r Runner, g *graph.Graph, initialInput string) workflow.Result {
	if r == nil {
		return workflow.ErrorResult("no execution backend configured")
	}
	snap := g.Snapshot()
	if err := workflow.Check(snap); err != nil {
		return workflow.ErrorResult("workflow is not runnable: %v", err)
	}
	return r.Run(ctx, workflow.Serialize(snap, initialInput))
}

// Studio couples an editor with an execution runner.
type Studio struct {
	editor *editor.Editor
	runner Runner
	logger *slog.Logger
}

// Option configures a Studio.
type Option func(*Studio)

// WithEditor replaces the default starter editor.
func WithEditor(e *editor.Editor) Option {
	return func(s *Studio) {
		s.editor = e
	}
}

// WithRunner sets where workflows are executed.
func WithRunner(r Runner) Option {
	return func(s *Studio) {
		s.runner = r
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		s.logger = logger
	}
}

// New creates a Studio. Without WithEditor it opens the starter workflow.
func New(opts ...Option) *Studio {
	s := &Studio{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.editor == nil {
		s.editor = editor.NewStarter(editor.WithLogger(s.logger))
	}
	return s
}

// Editor returns the editor.
func (s *Studio) Editor() *editor.Editor {
	return s.editor
}

// Workflow serializes the current graph.
func (s *Studio) Workflow(initialInput string) workflow.Request {
	return workflow.Serialize(s.editor.Graph(), initialInput)
}

// Plan returns the order in which the backend will visit the nodes.
func (s *Studio) Plan() (*workflow.Plan, error) {
	return workflow.BuildPlan(s.editor.Graph())
}

// Run submits the current graph. Edits made while the run is in flight
// do not affect it.
func (s *Studio) Run(ctx context.Context, initialInput string) workflow.Result {
	res := Submit(ctx, s.runner, s.editor.Graph(), initialInput)
	if res.Failed() {
		s.logger.Warn("Run failed", "err", res.Error)
	}
	return res
}
