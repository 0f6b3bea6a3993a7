// Package editor is the controller behind the workflow canvas.
//
// An Editor owns one graph.Graph and a Presentation that tracks which node is
// selected. Every user action (placing a node from the palette, editing a field
// of the selected node, connecting or deleting) goes through the Editor, which
// validates the change, applies it to the graph and fires EditorHooks.
package editor
