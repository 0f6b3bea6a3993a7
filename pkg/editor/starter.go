package editor

import (
	"github.com/aretw0/botcraft/pkg/domain"
)

// NewStarter returns an editor preloaded with the default two-node workflow:
// a start node wired into a research agent.
func NewStarter(opts ...Option) *Editor {
	e := New(nil, opts...)
	start, _ := e.graph.AddNode(domain.KindInput, &domain.InputConfig{
		Label:         "Start Node",
		InitialPrompt: "Find the latest AI news and email it to me.",
	}, domain.Position{X: 50, Y: 250})
	agent, _ := e.graph.AddNode(domain.KindAgent, &domain.AgentConfig{
		Label:             "Researcher Agent",
		SystemInstruction: "You are a senior tech researcher. You use tools to find information.",
		PromptTemplate:    domain.InputPlaceholder,
	}, domain.Position{X: 350, Y: 250})
	_, _ = e.graph.AddEdge(start.ID, agent.ID)
	return e
}
