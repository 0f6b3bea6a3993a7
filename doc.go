/*
Package botcraft is the core of a visual builder for agent workflows.

A workflow is a directed graph of typed nodes (input, agent, tool, external
connector, email action) wired by edges. Botcraft keeps that graph, applies
editor actions to it, serializes it into the execution request understood by
the workflow backend, and renders the backend's answer.

# Packages

  - pkg/graph: the graph model (nodes, edges, cycle checks, topological order).
  - pkg/editor: user actions over a graph plus the selection state.
  - pkg/workflow: the wire format, result decoding, files and run plans.
  - pkg/client: the execution client (one run at a time, bounded by a timeout).
  - pkg/session: persisted editing sessions shared by the HTTP and MCP adapters.

# Usage

A Studio couples an editor with a runner:

	studio := botcraft.New(
		botcraft.WithRunner(client.New("http://localhost:8000/execute-workflow")),
	)
	agent, _ := studio.Editor().AddNodeFromPalette(domain.KindAgent)
	_ = studio.Editor().SelectNode(agent.ID)
	_ = studio.Editor().UpdateSelectedNodeField(domain.FieldSystemInstruction, "Summarize.")

	res := studio.Run(ctx, "")
	fmt.Println(res.Display())
*/
package botcraft
