package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeAdded   EventType = "node_added"
	EventNodeUpdated EventType = "node_updated"
	EventNodeRemoved EventType = "node_removed"
	EventEdgeAdded   EventType = "edge_added"
	EventEdgeRemoved EventType = "edge_removed"
	EventRunStarted  EventType = "run_started"
	EventRunFinished EventType = "run_finished"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NewEventBase stamps an event of the given type with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// NodeEvent describes a node mutation.
type NodeEvent struct {
	EventBase
	NodeID string   `json:"node_id"`
	Kind   NodeKind `json:"kind"`
	Field  string   `json:"field,omitempty"`
}

// EdgeEvent describes an edge mutation.
type EdgeEvent struct {
	EventBase
	Edge Edge `json:"edge"`
}

// RunEvent describes a workflow submission.
type RunEvent struct {
	EventBase
	Nodes    int           `json:"nodes"`
	Edges    int           `json:"edges"`
	Duration time.Duration `json:"duration,omitempty"`
	Status   string        `json:"status,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// EditorHooks defines callbacks for graph mutations made through the editor.
type EditorHooks struct {
	OnNodeAdded   func(*NodeEvent)
	OnNodeUpdated func(*NodeEvent)
	OnNodeRemoved func(*NodeEvent)
	OnEdgeAdded   func(*EdgeEvent)
	OnEdgeRemoved func(*EdgeEvent)
}

// RunHooks defines callbacks around a workflow execution request.
type RunHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunFinish func(context.Context, *RunEvent)
}

// MergeEditorHooks chains several hook sets so each callback fires in order.
func MergeEditorHooks(sets ...EditorHooks) EditorHooks {
	var out EditorHooks
	for _, h := range sets {
		out.OnNodeAdded = chain(out.OnNodeAdded, h.OnNodeAdded)
		out.OnNodeUpdated = chain(out.OnNodeUpdated, h.OnNodeUpdated)
		out.OnNodeRemoved = chain(out.OnNodeRemoved, h.OnNodeRemoved)
		out.OnEdgeAdded = chain(out.OnEdgeAdded, h.OnEdgeAdded)
		out.OnEdgeRemoved = chain(out.OnEdgeRemoved, h.OnEdgeRemoved)
	}
	return out
}

// MergeRunHooks chains several run hook sets so each callback fires in order.
func MergeRunHooks(sets ...RunHooks) RunHooks {
	var out RunHooks
	for _, h := range sets {
		out.OnRunStart = chainCtx(out.OnRunStart, h.OnRunStart)
		out.OnRunFinish = chainCtx(out.OnRunFinish, h.OnRunFinish)
	}
	return out
}

func chain[E any](a, b func(*E)) func(*E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(e *E) {
		a(e)
		b(e)
	}
}

func chainCtx[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
