package ir

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// dump is the YAML layout of a graph. Nodes and edges are sorted so two
// structurally identical graphs produce identical documents.
type dump struct {
	Inputs  []string `yaml:"inputs,omitempty,flow"`
	Outputs []string `yaml:"outputs,omitempty,flow"`
	Nodes   []*Node  `yaml:"nodes"`
	Edges   []Edge   `yaml:"edges"`
}

// MarshalYAML implements yaml.Marshaler.
func (g *Graph) MarshalYAML() (any, error) {
	d := dump{
		Inputs:  g.Inputs,
		Outputs: g.Outputs,
		Nodes:   append(g.OpNodes(), g.DataNodes()...),
		Edges:   slices.Clone(g.Edges),
	}
	slices.SortFunc(d.Edges, compareEdges)
	return d, nil
}

func compareEdges(a, b Edge) int {
	if c := strings.Compare(a.From, b.From); c != 0 {
		return c
	}
	if c := strings.Compare(a.To, b.To); c != 0 {
		return c
	}
	if a.OutPort != b.OutPort {
		return a.OutPort - b.OutPort
	}
	return a.InPort - b.InPort
}

// WriteYAML writes a human-readable dump of the graph.
func (g *Graph) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return enc.Close()
}
