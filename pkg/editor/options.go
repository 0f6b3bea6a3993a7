package editor

import (
	"log/slog"
	"math/rand/v2"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
)

// CyclePolicy decides whether Connect may close a cycle.
type CyclePolicy int

const (
	// RejectCycles refuses self-loops and edges that would close a cycle.
	RejectCycles CyclePolicy = iota
	// AllowCycles accepts any edge between existing nodes.
	AllowCycles
)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithHooks registers callbacks fired after each successful mutation.
func WithHooks(hooks domain.EditorHooks) Option {
	return func(e *Editor) {
		e.hooks = domain.MergeEditorHooks(e.hooks, hooks)
	}
}

// WithCyclePolicy overrides the default RejectCycles policy.
func WithCyclePolicy(p CyclePolicy) Option {
	return func(e *Editor) {
		e.policy = p
	}
}

// WithRand sets the random source used to place palette nodes.
func WithRand(r *rand.Rand) Option {
	return func(e *Editor) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithGraphOptions passes options to graphs the editor creates itself.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(e *Editor) {
		e.graphOpts = append(e.graphOpts, opts...)
	}
}
