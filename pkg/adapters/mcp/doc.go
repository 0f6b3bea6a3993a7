/*
Package mcp exposes the workflow editor as a Model Context Protocol server.

Agents edit a session through tools (add_node, update_node, connect, run_workflow, ...)
and read the graph through the botcraft://graph resource. Tools that omit
session_id act on the server's default session, created on first use.
*/
package mcp
