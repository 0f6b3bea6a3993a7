// Package workflow converts editor graphs to and from the execution wire format.
//
// Serialize flattens a graph into a Request, the JSON body accepted by the
// execution endpoint. Deserialize turns the endpoint's response into a Result
// that can always be displayed. Parse goes the other way and rebuilds an
// editable graph from a Request. Workflow files (YAML or JSON) keep canvas
// positions and are handled by LoadFile and SaveFile.
package workflow
