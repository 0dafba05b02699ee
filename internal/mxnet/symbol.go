// Package mxnet is the MXNet front end: a reader for symbol JSON files
// (model-symbol.json) and the operator handlers for MXNet nodes.
package mxnet

import (
	"encoding/json"
	"fmt"
	"os"
)

// Symbol is a parsed symbol file.
type Symbol struct {
	Nodes    []SymbolNode `json:"nodes"`
	ArgNodes []int        `json:"arg_nodes"`
	Heads    []Entry      `json:"heads"`
}

// SymbolNode is one node of the symbol graph. Attribute values are always
// strings; files from MXNet before 1.0 store them under "attr" or "param"
// instead of "attrs".
type SymbolNode struct {
	Op     string            `json:"op"`
	Name   string            `json:"name"`
	Attrs  map[string]string `json:"attrs"`
	Attr   map[string]string `json:"attr"`
	Param  map[string]string `json:"param"`
	Inputs []Entry           `json:"inputs"`
}

// Entry references output Output of node Node.
type Entry struct {
	Node   int
	Output int
}

// UnmarshalJSON decodes [node, output] or [node, output, version].
func (e *Entry) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("node entry: %w", err)
	}
	if len(v) < 2 {
		return fmt.Errorf("node entry %s: want at least 2 fields", data)
	}
	e.Node, e.Output = v[0], v[1]
	return nil
}

// attributes merges the attribute maps of all symbol file versions.
func (n *SymbolNode) attributes() map[string]string {
	out := make(map[string]string, len(n.Attrs)+len(n.Attr)+len(n.Param))
	for _, m := range []map[string]string{n.Param, n.Attr, n.Attrs} {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// ParseFile parses a symbol JSON file.
//
//nolint:gosec // G304: Path is provided by user
func ParseFile(path string) (*Symbol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSymbol(data)
}

// ParseSymbol parses symbol JSON and checks that every entry references an
// existing node.
func ParseSymbol(data []byte) (*Symbol, error) {
	var s Symbol
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse symbol: %w", err)
	}
	check := func(e Entry) error {
		if e.Node < 0 || e.Node >= len(s.Nodes) || e.Output < 0 {
			return fmt.Errorf("failed to parse symbol: entry [%d, %d] out of range", e.Node, e.Output)
		}
		return nil
	}
	for _, n := range s.Nodes {
		for _, in := range n.Inputs {
			if err := check(in); err != nil {
				return nil, err
			}
		}
	}
	for _, h := range s.Heads {
		if err := check(h); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
