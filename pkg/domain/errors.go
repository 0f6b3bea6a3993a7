package domain

import "errors"

// ErrUnknownKind is returned when a kind tag does not name a node variant.
var ErrUnknownKind = errors.New("unknown node kind")

// ErrUnknownNode is returned when an operation references a node id that is not in the graph.
var ErrUnknownNode = errors.New("unknown node")

// ErrUnknownField is returned when a config key does not belong to the node's kind.
var ErrUnknownField = errors.New("unknown config field")

// ErrSelfLoop is returned when an edge would connect a node to itself.
var ErrSelfLoop = errors.New("edge connects a node to itself")

// ErrCycle is returned when an edge would close a cycle.
var ErrCycle = errors.New("edge would create a cycle")

// ErrNoSelection is returned by selection-scoped edits when nothing is selected.
var ErrNoSelection = errors.New("no node selected")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrRunInFlight is returned when a workflow run is requested while another is pending.
var ErrRunInFlight = errors.New("a workflow run is already in progress")
