package domain

import (
	"fmt"
	"strings"
)

// NodeKind identifies the variant of a node.
type NodeKind string

const (
	// KindInput is the workflow entry point carrying the initial prompt.
	KindInput NodeKind = "input"
	// KindAgent is an LLM step with a system instruction and prompt template.
	KindAgent NodeKind = "agent"
	// KindTool is a built-in capability such as web search.
	KindTool NodeKind = "tool"
	// KindExternalConnector delegates to an external tool server.
	KindExternalConnector NodeKind = "mcp"
	// KindEmailAction sends the upstream output by email.
	KindEmailAction NodeKind = "email"
)

var kinds = []NodeKind{KindInput, KindAgent, KindTool, KindExternalConnector, KindEmailAction}

// Older workflow payloads use the execution backend's vocabulary.
var kindAliases = map[string]NodeKind{
	"llm":       KindAgent,
	"search":    KindTool,
	"default":   KindAgent,
	"connector": KindExternalConnector,
}

// Kinds returns every node kind in palette order.
func Kinds() []NodeKind {
	out := make([]NodeKind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k NodeKind) String() string { return string(k) }

// ParseKind resolves a kind tag, accepting legacy aliases.
func ParseKind(s string) (NodeKind, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	if k := NodeKind(tag); k.Valid() {
		return k, nil
	}
	if k, ok := kindAliases[tag]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
