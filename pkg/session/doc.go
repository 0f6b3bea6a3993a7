/*
Package session implements session management and persistence orchestration.

A session is one editing workspace: a workflow graph plus the current selection.
The Manager serializes edits per session (locally and, optionally, across replicas
through a distributed locker) and turns every successful edit into a GraphDiff
that can be pushed to connected clients.
*/
package session
