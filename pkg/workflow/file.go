package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/graph"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// File is a workflow saved to disk. Unlike a Request it keeps canvas positions.
type File struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	InitialInput string `json:"initial_input,omitempty" yaml:"initial_input,omitempty"`

	domain.GraphDocument `yaml:",inline"`
}

// NewFile captures g as a workflow file.
func NewFile(name string, g *graph.Graph, initialInput string) *File {
	return &File{Name: name, InitialInput: initialInput, GraphDocument: *g.Document()}
}

// LoadFile reads a workflow file. The format is chosen by extension (.yaml, .yml or .json).
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported workflow file extension: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse workflow file: %w", err)
	}
	return &f, nil
}

// SaveFile writes f to path, picking the format by extension.
func SaveFile(path string, f *File) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(f)
	case ".json":
		data, err = json.MarshalIndent(f, "", "  ")
	default:
		return fmt.Errorf("unsupported workflow file extension: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode workflow file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Build turns the file into a graph. Kind aliases are accepted, and a file
// without any positions gets an automatic layout.
func (f *File) Build(opts ...graph.Option) (*graph.Graph, error) {
	doc := domain.GraphDocument{
		Nodes: make([]domain.NodeRecord, len(f.Nodes)),
		Edges: f.Edges,
	}
	positioned := false
	for i, n := range f.Nodes {
		kind, err := domain.ParseKind(string(n.Kind))
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		n.Kind = kind
		doc.Nodes[i] = n
		if n.Position != (domain.Position{}) {
			positioned = true
		}
	}

	g, err := graph.FromDocument(&doc, opts...)
	if err != nil {
		return nil, err
	}
	if !positioned {
		g.Layout(graph.DefaultLayoutConfig)
	}
	return g, nil
}
