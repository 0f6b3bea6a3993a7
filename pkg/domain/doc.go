/*
Package domain contains the core domain models of the Botcraft workflow editor.

It defines the entities of an agent workflow graph, such as Nodes, their typed
configuration and the directed Edges connecting them. This package is kept pure
and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - NodeKind: The closed set of node variants (Input, Agent, Tool, ExternalConnector, EmailAction).
  - Config: Kind-specific configuration carried by a Node.
  - Edge: A directed connection between two nodes.
  - GraphDocument: A serializable snapshot of a whole graph.
  - Session: A persisted editing workspace (graph plus presentation state).
*/
package domain
